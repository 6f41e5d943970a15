// Package rejection records why custom icon files were refused and turns
// those records into operator-facing sentences.
package rejection

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
)

// Record is one refused file. Context carries small values such as the
// size ceiling or the reference validation detail.
type Record struct {
	File    string            `json:"file"`
	Reason  iconerrors.Code   `json:"reason"`
	Context map[string]string `json:"context,omitempty"`
}

// Hash identifies a record by content. Records with equal file, reason and
// context hash equally regardless of map iteration order.
func (r Record) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(r.File)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(string(r.Reason))
	_, _ = d.Write([]byte{0})

	keys := make([]string, 0, len(r.Context))
	for k := range r.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{'='})
		_, _ = d.WriteString(r.Context[k])
		_, _ = d.Write([]byte{0})
	}

	return d.Sum64()
}

// FromError builds a record for file from a pipeline or scanner error.
func FromError(file string, err error) Record {
	return Record{
		File:    file,
		Reason:  iconerrors.CodeOf(err),
		Context: iconerrors.ContextOf(err),
	}
}

func (r Record) clone() Record {
	if r.Context == nil {
		return r
	}
	ctx := make(map[string]string, len(r.Context))
	for k, v := range r.Context {
		ctx[k] = v
	}
	r.Context = ctx
	return r
}
