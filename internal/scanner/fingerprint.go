package scanner

import (
	"encoding/json"
	"sort"
	"time"
)

// FileFingerprint is the cheap change-detection proxy for one file.
type FileFingerprint struct {
	Filename   string    `json:"filename"`
	ModifiedAt time.Time `json:"modified_at"`
	SizeBytes  int64     `json:"size_bytes"`
}

// Index lists fingerprints sorted by filename.
type Index []FileFingerprint

// NewIndex sorts fingerprints by filename and returns them as an Index.
func NewIndex(fingerprints []FileFingerprint) Index {
	idx := make(Index, len(fingerprints))
	copy(idx, fingerprints)
	sort.Slice(idx, func(i, j int) bool { return idx[i].Filename < idx[j].Filename })
	return idx
}

// Equal compares two indexes by value. Any added, removed, resized or
// touched file makes them unequal.
func (idx Index) Equal(other Index) bool {
	if len(idx) != len(other) {
		return false
	}
	for i := range idx {
		a, b := idx[i], other[i]
		if a.Filename != b.Filename || a.SizeBytes != b.SizeBytes || !a.ModifiedAt.Equal(b.ModifiedAt) {
			return false
		}
	}
	return true
}

// Filenames returns the indexed names in order.
func (idx Index) Filenames() []string {
	names := make([]string, len(idx))
	for i, fp := range idx {
		names[i] = fp.Filename
	}
	return names
}

func (idx Index) marshal() ([]byte, error) {
	if idx == nil {
		idx = Index{}
	}
	return json.Marshal(idx)
}

func unmarshalIndex(data []byte) (Index, bool) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil || idx == nil {
		return nil, false
	}
	return idx, true
}
