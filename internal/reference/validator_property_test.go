//go:build property

package reference

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
)

// TestValidatorProperties validates reference checks over generated inputs
func TestValidatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9753)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	uploads, err := Resolve(t.TempDir(), "https://example.com/uploads/icons")
	if err != nil {
		t.Fatal(err)
	}

	// Property: any other host is rejected with host_mismatch
	properties.Property("foreign hosts are rejected", prop.ForAll(
		func(host, path string) bool {
			if host == "" || host == "example" {
				return true
			}
			err := Validate("https://"+host+".test/"+path+"#y", uploads)
			return iconerrors.CodeOf(err) == iconerrors.DetailHostMismatch
		},
		gen.AlphaLowerString(),
		gen.AlphaString(),
	))

	// Property: a ".." segment anywhere in the path is rejected
	properties.Property("traversal segments are rejected", prop.ForAll(
		func(prefix []string, suffix string) bool {
			segments := append(append([]string{}, prefix...), "..", suffix)
			err := Validate("/uploads/icons/"+strings.Join(segments, "/"), uploads)
			return iconerrors.CodeOf(err) == iconerrors.DetailPathTraversal
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	// Property: well-formed fragments are always accepted
	properties.Property("identifier fragments are accepted", prop.ForAll(
		func(id string) bool {
			return Validate("#a"+id, nil) == nil
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
