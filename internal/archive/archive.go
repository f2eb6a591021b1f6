// Package archive stores multi-station waveform sets in a single SQLite file.
//
// An archive holds one role's traces (observed, synthetic, or one derivative
// parameter) for many stations. Each station carries one or more tagged
// waveform sets plus station metadata in one of two sub-schemas: a direct
// coordinate record or a full inventory. Handles are scoped to one ingest or
// export call; open for the call, close on return.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/station"
	"cmtdata/internal/waveform"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current archive schema version. Bump when the schema
// changes; readers reject archives written with a different version.
const schemaVersion = 1

// Archive is a handle on one SQLite waveform archive.
type Archive struct {
	db   *sql.DB
	path string
}

// Open connects to an existing archive for reading. A missing file is an I/O
// error naming the path.
func Open(path string) (*Archive, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "open archive", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "open archive", path, err)
	}
	a := &Archive{db: db, path: path}
	if err := a.checkVersion(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Create builds a fresh archive at the given path, deleting any existing file
// first (overwrite semantics, not append).
func Create(path string) (*Archive, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, cmterr.Wrap(cmterr.ErrIO, "remove existing archive", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "create archive", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, cmterr.Wrap(cmterr.ErrIO, "apply pragma", path, execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, cmterr.Wrap(cmterr.ErrIO, "create archive schema", path, err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		_ = db.Close()
		return nil, cmterr.Wrap(cmterr.ErrIO, "record schema version", path, err)
	}
	return &Archive{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Path returns the archive file path.
func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) checkVersion(ctx context.Context) error {
	var version int
	err := a.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "read archive version", a.path, err)
	}
	if version != schemaVersion {
		return cmterr.Wrap(cmterr.ErrIO, "archive version",
			fmt.Sprintf("%s has schema version %d, expected %d", a.path, version, schemaVersion), nil)
	}
	return nil
}

// Tags lists the distinct waveform tags stored for one station.
func (a *Archive) Tags(ctx context.Context, stationKey string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT DISTINCT tag FROM waveforms WHERE station_key = ? ORDER BY tag", stationKey)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "query tags", a.path, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, cmterr.Wrap(cmterr.ErrIO, "scan tag", a.path, err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "iterate tags", a.path, err)
	}
	return tags, nil
}

// Waveform extracts the trace matching the identifier under the given tag.
func (a *Archive) Waveform(ctx context.Context, id waveform.ChannelID, tag string) (*waveform.Waveform, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT network, station, location, channel, begin_offset, delta,
		        station_latitude, station_longitude, samples
		 FROM waveforms
		 WHERE station_key = ? AND tag = ? AND location = ? AND channel = ?
		 LIMIT 1`,
		id.StationKey(), tag, id.Location, id.Channel)

	var w waveform.Waveform
	var samples string
	err := row.Scan(&w.Network, &w.Station, &w.Location, &w.Channel,
		&w.Begin, &w.Delta, &w.StationLatitude, &w.StationLongitude, &samples)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cmterr.Wrap(cmterr.ErrResolution, "archive waveform",
			fmt.Sprintf("%s: no trace %s under tag %q", a.path, id, tag), nil)
	}
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "scan waveform", a.path, err)
	}
	if err := json.Unmarshal([]byte(samples), &w.Data); err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "decode samples", a.path, err)
	}
	return &w, nil
}

// AddWaveform stores a trace under the given tag.
func (a *Archive) AddWaveform(ctx context.Context, w *waveform.Waveform, tag string) error {
	samples, err := json.Marshal(w.Data)
	if err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "encode samples", a.path, err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO waveforms (
		    station_key, tag, network, station, location, channel,
		    begin_offset, delta, station_latitude, station_longitude, samples
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.StationKey(), tag, w.Network, w.Station, w.Location, w.Channel,
		w.Begin, w.Delta, w.StationLatitude, w.StationLongitude, string(samples))
	if err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "insert waveform", a.path, err)
	}
	return nil
}

// WaveformCount returns the number of traces stored in the archive.
func (a *Archive) WaveformCount(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM waveforms").Scan(&n)
	if err != nil {
		return 0, cmterr.Wrap(cmterr.ErrIO, "count waveforms", a.path, err)
	}
	return n, nil
}

// StationMetadata resolves the metadata variant for one station: a direct
// coordinate record takes priority over an inventory; when neither sub-schema
// is present the station cannot be located.
func (a *Archive) StationMetadata(ctx context.Context, stationKey string) (station.Metadata, error) {
	var lat, lon float64
	err := a.db.QueryRowContext(ctx,
		"SELECT latitude, longitude FROM station_coordinates WHERE station_key = ?",
		stationKey).Scan(&lat, &lon)
	if err == nil {
		return station.InlineMetadata(lat, lon), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return station.Metadata{}, cmterr.Wrap(cmterr.ErrIO, "query station coordinates", a.path, err)
	}

	rows, err := a.db.QueryContext(ctx,
		"SELECT latitude, longitude FROM station_inventory WHERE station_key = ? ORDER BY seq",
		stationKey)
	if err != nil {
		return station.Metadata{}, cmterr.Wrap(cmterr.ErrIO, "query station inventory", a.path, err)
	}
	defer rows.Close()

	var entries []station.Entry
	for rows.Next() {
		var e station.Entry
		if err := rows.Scan(&e.Latitude, &e.Longitude); err != nil {
			return station.Metadata{}, cmterr.Wrap(cmterr.ErrIO, "scan inventory entry", a.path, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return station.Metadata{}, cmterr.Wrap(cmterr.ErrIO, "iterate inventory", a.path, err)
	}
	if len(entries) == 0 {
		return station.Metadata{}, cmterr.Wrap(cmterr.ErrResolution, "station metadata",
			fmt.Sprintf("%s: station %s has neither coordinates nor inventory", a.path, stationKey), nil)
	}
	return station.InventoryMetadata(entries), nil
}

// AddCoordinates stores a direct coordinate record for a station.
func (a *Archive) AddCoordinates(ctx context.Context, stationKey string, lat, lon, elev float64) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO station_coordinates (station_key, latitude, longitude, elevation)
		 VALUES (?, ?, ?, ?)`,
		stationKey, lat, lon, elev)
	if err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "insert station coordinates", a.path, err)
	}
	return nil
}

// AddInventory stores an inventory for a station, replacing any prior one.
func (a *Archive) AddInventory(ctx context.Context, stationKey string, entries []station.Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "begin inventory tx", a.path, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM station_inventory WHERE station_key = ?", stationKey); err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "clear station inventory", a.path, err)
	}
	for i, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO station_inventory (station_key, seq, latitude, longitude)
			 VALUES (?, ?, ?, ?)`,
			stationKey, i, e.Latitude, e.Longitude); err != nil {
			return cmterr.Wrap(cmterr.ErrIO, "insert inventory entry", a.path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "commit inventory", a.path, err)
	}
	return nil
}

// MetadataStations lists every station key that carries metadata in either
// sub-schema.
func (a *Archive) MetadataStations(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT station_key FROM station_coordinates
		 UNION
		 SELECT DISTINCT station_key FROM station_inventory
		 ORDER BY station_key`)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "query metadata stations", a.path, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, cmterr.Wrap(cmterr.ErrIO, "scan station key", a.path, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "iterate metadata stations", a.path, err)
	}
	return keys, nil
}

// CopyStationMetadata inserts every station metadata record from this archive
// into dst, preserving the sub-schema of each entry.
func (a *Archive) CopyStationMetadata(ctx context.Context, dst *Archive) error {
	keys, err := a.MetadataStations(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		meta, err := a.StationMetadata(ctx, key)
		if err != nil {
			return err
		}
		switch meta.Kind {
		case station.Inline:
			if err := dst.AddCoordinates(ctx, key, meta.Latitude, meta.Longitude, 0); err != nil {
				return err
			}
		case station.Inventory:
			if err := dst.AddInventory(ctx, key, meta.Entries); err != nil {
				return err
			}
		}
	}
	return nil
}
