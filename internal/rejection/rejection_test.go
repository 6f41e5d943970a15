package rejection

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/conneroisu/iconward/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHash(t *testing.T) {
	a := Record{File: "a.svg", Reason: iconerrors.CodeFileTooLarge, Context: map[string]string{"max_bytes": "204800", "x": "1"}}
	b := Record{File: "a.svg", Reason: iconerrors.CodeFileTooLarge, Context: map[string]string{"x": "1", "max_bytes": "204800"}}
	assert.Equal(t, a.Hash(), b.Hash())

	c := Record{File: "a.svg", Reason: iconerrors.CodeFileTooLarge, Context: map[string]string{"max_bytes": "1024"}}
	assert.NotEqual(t, a.Hash(), c.Hash())

	d := Record{File: "a.svg", Reason: iconerrors.CodeReadError}
	e := Record{File: "a.svgread_error"}
	assert.NotEqual(t, d.Hash(), e.Hash())
}

func TestTrackerDeduplicates(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "json", Output: &buf})
	tracker := NewTracker(logger, nil)

	ctx := map[string]string{iconerrors.ContextMaxBytes: "204800"}
	assert.True(t, tracker.Record("big.svg", iconerrors.CodeFileTooLarge, ctx))
	assert.False(t, tracker.Record("big.svg", iconerrors.CodeFileTooLarge, map[string]string{iconerrors.ContextMaxBytes: "204800"}))
	assert.True(t, tracker.Record("big.svg", iconerrors.CodeReadError, nil))
	assert.Equal(t, 2, tracker.Len())

	// Only first occurrences are logged.
	assert.Equal(t, 2, strings.Count(buf.String(), "Custom icon rejected"))

	// Mutating the caller's map after recording has no effect.
	ctx[iconerrors.ContextMaxBytes] = "1"
	assert.Equal(t, "204800", tracker.Records()[0].Context[iconerrors.ContextMaxBytes])
}

func TestTrackerRecordError(t *testing.T) {
	tracker := NewTracker(nil, nil)

	err := iconerrors.NewSecurityError(iconerrors.CodeUnsafeUseReference, "unsafe").
		WithContext(iconerrors.ContextDetail, string(iconerrors.DetailHostMismatch))
	require.True(t, tracker.RecordError("x.svg", err))

	records := tracker.Records()
	require.Len(t, records, 1)
	assert.Equal(t, iconerrors.CodeUnsafeUseReference, records[0].Reason)
	assert.Equal(t, "host_mismatch", records[0].Context[iconerrors.ContextDetail])
}

func TestTrackerReplayAndDrain(t *testing.T) {
	tracker := NewTracker(nil, nil)
	persisted := []Record{
		{File: "z.svg", Reason: iconerrors.CodeInvalidType},
		{File: "a.svg", Reason: iconerrors.CodeIconLimitReached, Context: map[string]string{iconerrors.ContextLimit: "200"}},
		{File: "z.svg", Reason: iconerrors.CodeInvalidType},
	}

	tracker.Replay(persisted)
	tracker.Replay(persisted)
	assert.Equal(t, 2, tracker.Len())

	messages := tracker.Drain()
	assert.Equal(t, []string{
		"a.svg: skipped because the limit of 200 custom icons was reached",
		"z.svg: the file is not an SVG image",
	}, messages)

	assert.Equal(t, 0, tracker.Len())
	assert.Empty(t, tracker.Drain())

	// After draining the same record is accepted again.
	tracker.Replay(persisted)
	assert.Equal(t, 2, tracker.Len())
}

func TestTrackerConcurrentAdd(t *testing.T) {
	tracker := NewTracker(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tracker.Record("same.svg", iconerrors.CodeReadError, nil)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, tracker.Len())
}

func TestFormatter(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name:   "file too large reports kilobytes",
			record: Record{File: "big.svg", Reason: iconerrors.CodeFileTooLarge, Context: map[string]string{iconerrors.ContextMaxBytes: "204800"}},
			want:   "big.svg: file exceeds the maximum size of 200 KB",
		},
		{
			name:   "limit reached",
			record: Record{File: "n.svg", Reason: iconerrors.CodeIconLimitReached, Context: map[string]string{iconerrors.ContextLimit: "5"}},
			want:   "n.svg: skipped because the limit of 5 custom icons was reached",
		},
		{
			name:   "unsafe reference with detail",
			record: Record{File: "u.svg", Reason: iconerrors.CodeUnsafeUseReference, Context: map[string]string{iconerrors.ContextDetail: "host_mismatch"}},
			want:   "u.svg: contains an unsafe reference (it points to another host)",
		},
		{
			name:   "validation failed without detail",
			record: Record{File: "v.svg", Reason: iconerrors.CodeValidationFailed},
			want:   "v.svg: failed validation (unspecified)",
		},
		{
			name:   "unknown detail is shown raw",
			record: Record{File: "v.svg", Reason: iconerrors.CodeValidationFailed, Context: map[string]string{iconerrors.ContextDetail: "weird"}},
			want:   "v.svg: failed validation (weird)",
		},
		{
			name:   "duplicate key",
			record: Record{File: "logo.svg", Reason: iconerrors.CodeDuplicateIconKey, Context: map[string]string{iconerrors.ContextKey: "custom_logo"}},
			want:   `logo.svg: another file already produces the icon key "custom_logo"`,
		},
		{
			name:   "plain reason",
			record: Record{File: "e.svg", Reason: iconerrors.CodeEmptyIconKey},
			want:   "e.svg: the file name does not produce a usable icon key",
		},
		{
			name:   "unknown reason",
			record: Record{File: "q.svg", Reason: "something_new"},
			want:   "q.svg: was rejected (something_new)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.record))
		})
	}
}

func TestFormatterCoversEveryRejectionCode(t *testing.T) {
	f := NewFormatter()
	for _, code := range iconerrors.RejectionCodes() {
		msg := f.Format(Record{File: "f.svg", Reason: code})
		assert.True(t, strings.HasPrefix(msg, "f.svg: "), code)
		assert.NotContains(t, msg, "was rejected", code)
		assert.NotContains(t, msg, "%!", code)
	}
}
