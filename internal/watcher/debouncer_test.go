package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(path string, op Operation) FileEvent {
	return FileEvent{Path: path, Operation: op, Timestamp: time.Now()}
}

func waitBatch(t *testing.T, d *Debouncer) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
		return nil
	}
}

func TestDebouncerBatchesBurst(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.md", OpModify))
	d.Add(event("b.md", OpModify))
	d.Add(event("a.md", OpModify))

	batch := waitBatch(t, d)
	assert.Len(t, batch, 2, "same-path events collapse into one")
}

func TestDebouncerCoalescingRules(t *testing.T) {
	tests := []struct {
		name   string
		first  Operation
		second Operation
		want   Operation
		gone   bool
	}{
		{name: "create then modify stays create", first: OpCreate, second: OpModify, want: OpCreate},
		{name: "create then delete cancels", first: OpCreate, second: OpDelete, gone: true},
		{name: "modify then delete becomes delete", first: OpModify, second: OpDelete, want: OpDelete},
		{name: "delete then create becomes modify", first: OpDelete, second: OpCreate, want: OpModify},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer(20 * time.Millisecond)
			defer d.Stop()

			d.Add(event("x.md", tt.first))
			d.Add(event("x.md", tt.second))

			if tt.gone {
				select {
				case batch := <-d.Output():
					t.Fatalf("expected no batch, got %v", batch)
				case <-time.After(100 * time.Millisecond):
				}
				return
			}

			batch := waitBatch(t, d)
			require.Len(t, batch, 1)
			assert.Equal(t, tt.want, batch[0].Operation)
		})
	}
}

func TestDebouncerWindowResets(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.md", OpModify))
	time.Sleep(30 * time.Millisecond)
	d.Add(event("b.md", OpModify))

	// The second event reset the timer, so nothing has flushed yet.
	select {
	case batch := <-d.Output():
		t.Fatalf("flushed too early: %v", batch)
	case <-time.After(30 * time.Millisecond):
	}

	batch := waitBatch(t, d)
	assert.Len(t, batch, 2)
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	d.Add(event("a.md", OpModify))
	d.Stop()
	d.Stop() // idempotent

	// Events after Stop are ignored; the channel is closed.
	d.Add(event("b.md", OpModify))
	_, open := <-d.Output()
	assert.False(t, open)
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "MODIFY", OpModify.String())
	assert.Equal(t, "DELETE", OpDelete.String())
}
