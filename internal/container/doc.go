// Package container assembles measurement data for moment-tensor inversion.
//
// A DataContainer owns the ordered collection of trace groups, a fixed
// derivative-parameter list, and a per-run ingestion log. Ingestion parses a
// window file into skeletons, resolves station geometry, and loads waveforms
// through one of two backends: the path-convention loader (one file per
// trace, derivatives located by appending the parameter name to the synthetic
// path) or the archive loader (one SQLite archive per role, traces selected
// by station, tag, and channel). Export writes updated synthetics back out,
// per file or per tagged archive with deduplication.
//
// Ingestion is additive: multiple calls accumulate groups from heterogeneous
// sources. A failure aborts the whole call and leaves groups from prior calls
// untouched. The container never removes or reorders groups.
package container
