package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"cmtdata/internal/archive"
	"cmtdata/internal/cmterr"
	"cmtdata/internal/trace"
	"cmtdata/internal/waveform"
)

// ExportPerFile writes every group's updated synthetic as one file per group
// in outputDir, named STA.NET.LOC.CHA.TAG.json. Groups without an updated
// synthetic are skipped.
func (c *DataContainer) ExportPerFile(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "create output directory", outputDir, err)
	}

	buckets := c.bucketNewSynt()
	for _, tag := range sortedTags(buckets) {
		for _, group := range buckets[tag] {
			name := fmt.Sprintf("%s.%s.%s.%s.%s.json",
				group.Station(), group.Network(), group.Location(), group.Channel(), tag)
			path := filepath.Join(outputDir, name)
			if err := waveform.Write(path, group.NewSynt()); err != nil {
				return err
			}
			c.logger.Debug("updated synthetic written", "path", path)
		}
	}
	return nil
}

// ExportArchive writes one archive per provenance tag, deduplicating by the
// updated synthetic's identifier so that groups differing only by location
// code are written once. Station metadata is copied over from the reference
// archive. Existing destination archives are deleted and recreated. The
// returned paths name the archives written, one per tag.
func (c *DataContainer) ExportArchive(ctx context.Context, outputPath, referencePath string) ([]string, error) {
	buckets := c.bucketNewSynt()
	if len(buckets) == 0 {
		return nil, cmterr.Wrap(cmterr.ErrConsistency, "archive export",
			"no group carries an updated synthetic", nil)
	}

	reference, err := archive.Open(referencePath)
	if err != nil {
		return nil, err
	}
	defer reference.Close()

	written := make([]string, 0, len(buckets))
	for _, tag := range sortedTags(buckets) {
		path := tagArchivePath(outputPath, tag)
		if err := c.writeTagArchive(ctx, path, tag, buckets[tag], reference); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (c *DataContainer) writeTagArchive(ctx context.Context, path, tag string, groups []*trace.TraceWindow, reference *archive.Archive) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return cmterr.Wrap(cmterr.ErrIO, "lock archive", path, err)
	}
	if !locked {
		return cmterr.Wrap(cmterr.ErrIO, "lock archive",
			fmt.Sprintf("%s is locked by another process", path), nil)
	}
	defer func() { _ = lock.Unlock() }()

	dst, err := archive.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	added := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		newSynt := group.NewSynt()
		// Groups that differ only by location code share one synthetic
		// identity; write it once.
		if _, dup := added[newSynt.ID()]; dup {
			continue
		}
		added[newSynt.ID()] = struct{}{}
		if err := dst.AddWaveform(ctx, newSynt, tag); err != nil {
			return err
		}
	}

	if err := reference.CopyStationMetadata(ctx, dst); err != nil {
		return err
	}
	c.logger.Info("updated synthetics archived",
		"path", path, "tag", tag, "waveforms", len(added))
	return nil
}

// bucketNewSynt groups every trace group carrying an updated synthetic by the
// original synthetic's provenance tag.
func (c *DataContainer) bucketNewSynt() map[string][]*trace.TraceWindow {
	buckets := make(map[string][]*trace.TraceWindow)
	for _, group := range c.groups {
		if group.NewSynt() == nil {
			continue
		}
		tag := group.Tags[trace.RoleSynt]
		buckets[tag] = append(buckets[tag], group)
	}
	return buckets
}

func sortedTags(buckets map[string][]*trace.TraceWindow) []string {
	tags := make([]string, 0, len(buckets))
	for tag := range buckets {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// tagArchivePath derives the per-tag destination path by inserting the tag
// before the file extension.
func tagArchivePath(outputPath, tag string) string {
	if tag == "" {
		return outputPath
	}
	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(outputPath, ext)
	return base + "." + tag + ext
}
