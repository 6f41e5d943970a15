//go:build property

package watcher

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFilterProperties validates path filtering over generated names
func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	dir := filepath.Join(string(filepath.Separator), "srv", "uploads", "icons")
	filter := DirFilter(dir)

	// Property: direct entries are always accepted
	properties.Property("direct entries pass the directory filter", prop.ForAll(
		func(name string) bool {
			return filter(filepath.Join(dir, "f"+name+".svg"))
		},
		gen.AlphaString(),
	))

	// Property: nested entries are never accepted
	properties.Property("nested entries are ignored", prop.ForAll(
		func(sub, name string) bool {
			return !filter(filepath.Join(dir, "d"+sub, "f"+name+".svg"))
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	// Property: dot-prefixed names are always hidden
	properties.Property("dot files are filtered", prop.ForAll(
		func(name string) bool {
			return !NoHiddenFilter(filepath.Join(dir, ".f"+name))
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
