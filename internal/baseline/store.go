// internal/baseline/store.go
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vigil/internal/errors"
	"vigil/internal/snapshot"
)

// FormatVersion marks the on-disk record layout. Load rejects any other
// value so a future format is surfaced as unsupported instead of being
// misparsed.
const FormatVersion = 1

// Record is the durable form of a Snapshot. Digests are stored as
// fixed-length hex strings.
type Record struct {
	Version   int               `json:"version"`
	Root      string            `json:"root,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Files     map[string]string `json:"files"`
}

// Store persists Snapshots as versioned baseline files.
type Store struct {
	// Compress writes baselines zstd-compressed. Load accepts both
	// forms regardless of this setting.
	Compress bool
}

func NewStore() *Store {
	return &Store{}
}

// Save serializes snap to path. The record is written to a temporary
// file in the destination directory and renamed into place, so a failure
// partway never leaves a parseable baseline with missing entries.
func (s *Store) Save(snap snapshot.Snapshot, root, path string) error {
	record := Record{
		Version:   FormatVersion,
		Root:      root,
		CreatedAt: time.Now().UTC(),
		Files:     make(map[string]string, len(snap)),
	}
	for p, d := range snap {
		record.Files[p] = d.String()
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.WriteFailure("encoding baseline", err)
	}

	if s.Compress {
		data, err = compress(data)
		if err != nil {
			return errors.WriteFailure("compressing baseline", err)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".baseline-*")
	if err != nil {
		return errors.WriteFailure(fmt.Sprintf("creating temporary baseline in %s", dir), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WriteFailure("writing baseline", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WriteFailure("closing baseline", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WriteFailure(fmt.Sprintf("replacing baseline %s", path), err)
	}

	return nil
}

// Load reads the baseline at path back into a Snapshot. A missing file
// is BaselineNotFound; anything unparseable, an unknown version, or a
// malformed digest is BaselineCorrupt.
func (s *Store) Load(path string) (snapshot.Snapshot, *Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.BaselineNotFound(fmt.Sprintf("baseline %s does not exist", path), err)
		}
		return nil, nil, fmt.Errorf("reading baseline %s: %w", path, err)
	}

	data, err = decompress(data)
	if err != nil {
		return nil, nil, errors.BaselineCorrupt(fmt.Sprintf("decompressing baseline %s", path), err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, nil, errors.BaselineCorrupt(fmt.Sprintf("parsing baseline %s", path), err)
	}
	if record.Version != FormatVersion {
		return nil, nil, errors.BaselineCorrupt(
			fmt.Sprintf("baseline %s has unsupported format version %d", path, record.Version), nil)
	}

	snap := make(snapshot.Snapshot, len(record.Files))
	for p, hexDigest := range record.Files {
		d, err := snapshot.ParseDigest(hexDigest)
		if err != nil {
			return nil, nil, errors.BaselineCorrupt(fmt.Sprintf("baseline %s entry %s", path, p), err)
		}
		snap[p] = d
	}

	return snap, &record, nil
}
