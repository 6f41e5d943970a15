package services

import (
	"path/filepath"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/conneroisu/iconward/internal/rejection"
)

// ValidationOutcome is the verdict for one file.
type ValidationOutcome struct {
	File     string          `json:"file" yaml:"file"`
	Accepted bool            `json:"accepted" yaml:"accepted"`
	Key      string          `json:"key,omitempty" yaml:"key,omitempty"`
	Reason   iconerrors.Code `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message  string          `json:"message,omitempty" yaml:"message,omitempty"`
}

// ValidateFiles runs the custom icon checks on each path. References are
// judged against the configured uploads location when there is one.
func (c *Container) ValidateFiles(paths []string) []ValidationOutcome {
	uploads := c.UploadsContext()
	formatter := rejection.NewFormatter()

	outcomes := make([]ValidationOutcome, 0, len(paths))
	for _, path := range paths {
		key, _, err := c.Scanner.Inspect(path, uploads)
		if err != nil {
			record := rejection.FromError(filepath.Base(path), err)
			outcomes = append(outcomes, ValidationOutcome{
				File:    path,
				Reason:  record.Reason,
				Message: formatter.Format(record),
			})
			continue
		}
		outcomes = append(outcomes, ValidationOutcome{File: path, Accepted: true, Key: key})
	}
	return outcomes
}
