package rejection

import (
	"context"
	"sort"
	"sync"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
	"github.com/conneroisu/iconward/internal/logging"
)

// Tracker collects deduplicated rejection records until they are drained.
type Tracker struct {
	mu        sync.Mutex
	seen      map[uint64]struct{}
	records   []Record
	logger    logging.Logger
	formatter *Formatter
}

// NewTracker creates a tracker. A nil logger disables first-occurrence
// logging; a nil formatter falls back to NewFormatter().
func NewTracker(logger logging.Logger, formatter *Formatter) *Tracker {
	if formatter == nil {
		formatter = NewFormatter()
	}
	if logger != nil {
		logger = logger.WithComponent("rejection")
	}
	return &Tracker{
		seen:      make(map[uint64]struct{}),
		logger:    logger,
		formatter: formatter,
	}
}

// Add records r unless an identical record is already held. It reports
// whether r was new.
func (t *Tracker) Add(r Record) bool {
	h := r.Hash()

	t.mu.Lock()
	if _, dup := t.seen[h]; dup {
		t.mu.Unlock()
		return false
	}
	t.seen[h] = struct{}{}
	t.records = append(t.records, r.clone())
	t.mu.Unlock()

	if t.logger != nil {
		fields := []interface{}{"file", r.File, "reason", string(r.Reason)}
		for k, v := range r.Context {
			fields = append(fields, k, v)
		}
		t.logger.Warn(context.Background(), nil, "Custom icon rejected", fields...)
	}
	return true
}

// Record is shorthand for Add(Record{File: file, Reason: reason, Context: ctx}).
func (t *Tracker) Record(file string, reason iconerrors.Code, ctx map[string]string) bool {
	return t.Add(Record{File: file, Reason: reason, Context: ctx})
}

// RecordError records err against file using its code and context.
func (t *Tracker) RecordError(file string, err error) bool {
	return t.Add(FromError(file, err))
}

// Replay re-adds previously persisted records. Duplicates of records already
// held are skipped.
func (t *Tracker) Replay(records []Record) {
	for _, r := range records {
		t.Add(r)
	}
}

// Records returns a snapshot of the held records in insertion order.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Record, len(t.records))
	for i, r := range t.records {
		out[i] = r.clone()
	}
	return out
}

// Len returns the number of held records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Drain formats and removes every held record. Messages are sorted.
func (t *Tracker) Drain() []string {
	t.mu.Lock()
	records := t.records
	t.records = nil
	t.seen = make(map[uint64]struct{})
	t.mu.Unlock()

	messages := make([]string, 0, len(records))
	for _, r := range records {
		messages = append(messages, t.formatter.Format(r))
	}
	sort.Strings(messages)
	return messages
}
