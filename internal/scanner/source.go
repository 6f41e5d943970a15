package scanner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conneroisu/iconward/internal/rejection"
)

// Source locates an accepted custom icon inside the uploads tree.
type Source struct {
	RelativePath    string `json:"relative_path"`
	EncodedFilename string `json:"encoded_filename"`
	URL             string `json:"url"`
}

// CachePayload is the persisted result of a full rescan.
type CachePayload struct {
	Icons    map[string]string  `json:"icons"`
	Sources  map[string]Source  `json:"sources"`
	Rejected []rejection.Record `json:"rejected"`
}

// valid reports whether the payload is structurally usable: both maps
// present and describing the same keys.
func (p *CachePayload) valid() bool {
	if p.Icons == nil || p.Sources == nil || len(p.Icons) != len(p.Sources) {
		return false
	}
	for key := range p.Icons {
		if _, ok := p.Sources[key]; !ok {
			return false
		}
	}
	return true
}

func unmarshalPayload(data []byte) (*CachePayload, bool) {
	var p CachePayload
	if err := json.Unmarshal(data, &p); err != nil || !p.valid() {
		return nil, false
	}
	return &p, true
}

// Location is where custom icons live: a filesystem directory and the public
// URL it is served under.
type Location struct {
	BaseDir string
	BaseURL string
}

// Resolver finds the uploads location.
type Resolver interface {
	Resolve() (Location, error)
}

// StaticResolver returns a fixed location, typically built from config.
type StaticResolver struct {
	BaseDir string
	BaseURL string
}

// Resolve returns the configured location. An empty BaseDir is an error.
func (r StaticResolver) Resolve() (Location, error) {
	if strings.TrimSpace(r.BaseDir) == "" {
		return Location{}, fmt.Errorf("uploads base directory is not configured")
	}
	return Location{BaseDir: r.BaseDir, BaseURL: r.BaseURL}, nil
}

var _ Resolver = StaticResolver{}
