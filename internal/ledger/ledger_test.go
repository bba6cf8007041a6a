package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memStore is an in-memory Store for exercising the state machine
// without a cloud API.
type memStore struct {
	records map[string]Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (m *memStore) Read(_ context.Context, nodeID string) (Record, error) {
	return m.records[nodeID], nil
}

func (m *memStore) Mark(_ context.Context, nodeID string, at time.Time) error {
	rec := m.records[nodeID]
	rec.Attempts = append(rec.Attempts, at)
	m.records[nodeID] = rec
	return nil
}

func (m *memStore) Clear(_ context.Context, nodeID string) error {
	delete(m.records, nodeID)
	return nil
}

func TestResetterCeiling(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var actions int
	resetter := &Resetter{
		Store:   store,
		Ceiling: 3,
		Action: func(context.Context, string) error {
			actions++
			return nil
		},
	}

	// Attempts 1-3 perform resets.
	for want := 1; want <= 3; want++ {
		attempt, err := resetter.Reset(ctx, "node-1", now)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error %v", want, err)
		}
		if attempt != want {
			t.Errorf("attempt number = %d, want %d", attempt, want)
		}
	}
	if actions != 3 {
		t.Errorf("action performed %d times, want 3", actions)
	}

	// Attempt 4 is refused with a distinct signal and no reset.
	attempt, err := resetter.Reset(ctx, "node-1", now)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("attempt 4: error = %v, want ErrExhausted", err)
	}
	if attempt != 3 {
		t.Errorf("exhausted count = %d, want 3", attempt)
	}
	if actions != 3 {
		t.Errorf("action performed %d times after exhaustion, want 3", actions)
	}

	// Recovery clears the record and re-arms the resetter.
	if err := resetter.Recover(ctx, "node-1"); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	attempt, err = resetter.Reset(ctx, "node-1", now)
	if err != nil || attempt != 1 {
		t.Errorf("post-recovery Reset() = (%d, %v), want (1, nil)", attempt, err)
	}
}

func TestResetterDryRun(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	resetter := &Resetter{
		Store:   store,
		Ceiling: 3,
		DryRun:  true,
		Action: func(context.Context, string) error {
			t.Fatal("action must not run in dry-run mode")
			return nil
		},
	}

	attempt, err := resetter.Reset(ctx, "node-1", time.Now().UTC())
	if err != nil || attempt != 1 {
		t.Errorf("dry-run Reset() = (%d, %v), want (1, nil)", attempt, err)
	}
	if len(store.records) != 0 {
		t.Error("dry-run must not write to the store")
	}
}

func TestResetterActionFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	bang := errors.New("ipmi unreachable")

	resetter := &Resetter{
		Store:   store,
		Ceiling: 3,
		Action:  func(context.Context, string) error { return bang },
	}

	if _, err := resetter.Reset(ctx, "node-1", time.Now().UTC()); !errors.Is(err, bang) {
		t.Fatalf("Reset() error = %v, want %v", err, bang)
	}
	// A failed action must not consume an attempt.
	if store.records["node-1"].Count() != 0 {
		t.Error("failed action recorded an attempt")
	}
}

func TestRecordState(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  Record
		ceiling int
		want    State
	}{
		{"No Record", Record{}, 3, StateHealthy},
		{"Below Ceiling", Record{Attempts: []time.Time{t0}}, 3, StateRetrying},
		{"At Ceiling", Record{Attempts: []time.Time{t0, t0, t0}}, 3, StateExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.State(tt.ceiling); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	extra := map[string]any{
		"hammer_resets_ipmi": []any{"2025-06-01T00:00:00Z", "2025-06-02T00:00:00Z"},
		"unrelated":          "value",
	}

	rec, err := ParseRecord(extra)
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	if rec.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", rec.Count())
	}

	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !rec.LastAttempt().Equal(want) {
		t.Errorf("LastAttempt() = %v, want %v", rec.LastAttempt(), want)
	}

	// Round trip back to the extra representation.
	vals := rec.ToExtraValue()
	if len(vals) != 2 || vals[1] != "2025-06-02T00:00:00Z" {
		t.Errorf("ToExtraValue() = %v", vals)
	}

	// No ledger key at all decodes to a healthy record.
	empty, err := ParseRecord(map[string]any{"other": 1})
	if err != nil {
		t.Fatalf("ParseRecord(empty) error = %v", err)
	}
	if empty.State(3) != StateHealthy {
		t.Errorf("empty record state = %v, want healthy", empty.State(3))
	}
}
