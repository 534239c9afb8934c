package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"trainbot/internal/storage"
	"trainbot/internal/workout"
)

const recordLine = "16:30 23-05-24;60.02134,60.12345;12.5;4:30;easy run;"

func newTestMachine() *Machine {
	return NewMachine(storage.NewMemory())
}

func TestPlanFlow(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(1)

	if got := m.Handle(ctx, chat, "1"); got != MsgEnterRecord {
		t.Fatalf("reply to 1 = %q, want record prompt", got)
	}
	if st := m.StateOf(chat); st != StateAwaitingRecord {
		t.Fatalf("state = %q", st)
	}

	reply := m.Handle(ctx, chat, recordLine)
	if !strings.HasPrefix(reply, MsgSavedPrefix) {
		t.Fatalf("reply = %q, want saved confirmation", reply)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(reply, MsgSavedPrefix))
	if err != nil {
		t.Fatalf("id suffix not numeric in %q", reply)
	}
	if id < 1 || id > workout.MaxID {
		t.Fatalf("id %d out of range", id)
	}
	if st := m.StateOf(chat); st != StateIdle {
		t.Fatalf("state after save = %q, want idle", st)
	}
}

func TestPlanFlowRetryAfterParseError(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(2)

	m.Handle(ctx, chat, "1")
	if got := m.Handle(ctx, chat, "not a workout"); got != workout.ErrBadArgs.Message {
		t.Fatalf("reply = %q, want bad args message", got)
	}
	// Still awaiting the record: a corrected line succeeds.
	if st := m.StateOf(chat); st != StateAwaitingRecord {
		t.Fatalf("state = %q, want awaiting_record for retry", st)
	}
	if got := m.Handle(ctx, chat, recordLine); !strings.HasPrefix(got, MsgSavedPrefix) {
		t.Fatalf("retry reply = %q", got)
	}
}

func TestDeleteFlow(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(3)

	m.Handle(ctx, chat, "1")
	reply := m.Handle(ctx, chat, recordLine)
	id := strings.TrimPrefix(reply, MsgSavedPrefix)

	if got := m.Handle(ctx, chat, "2"); got != MsgEnterDeleteID {
		t.Fatalf("reply to 2 = %q", got)
	}
	if got := m.Handle(ctx, chat, id); got != MsgDeleted {
		t.Fatalf("delete reply = %q", got)
	}
	if st := m.StateOf(chat); st != StateIdle {
		t.Fatalf("state after delete = %q", st)
	}

	// Subsequent listing shows nothing.
	m.Handle(ctx, chat, "3")
	if got := m.Handle(ctx, chat, "5"); got != MsgHistoryEmpty {
		t.Fatalf("listing after delete = %q, want empty history", got)
	}
}

func TestDeleteFlowValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(4)

	m.Handle(ctx, chat, "2")
	if got := m.Handle(ctx, chat, "not-an-id"); got != workout.ErrBadArgs.Message {
		t.Fatalf("reply = %q", got)
	}
	if st := m.StateOf(chat); st != StateAwaitingDeleteID {
		t.Fatalf("state = %q, must keep awaiting id", st)
	}
	if got := m.Handle(ctx, chat, "12345"); got != workout.ErrBadID.Message {
		t.Fatalf("reply for absent id = %q", got)
	}
	if st := m.StateOf(chat); st != StateAwaitingDeleteID {
		t.Fatalf("state = %q, must keep awaiting id after unknown id", st)
	}
}

func TestListFlow(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(5)

	lines := []string{
		"10:00 01-05-24;60.0,30.0;5;5:00;первая;",
		"10:00 02-05-24;60.0,30.0;7;4:50;вторая;",
		"10:00 03-05-24;60.0,30.0;9;4:40;третья;",
	}
	for _, l := range lines {
		m.Handle(ctx, chat, "1")
		if got := m.Handle(ctx, chat, l); !strings.HasPrefix(got, MsgSavedPrefix) {
			t.Fatalf("save %q = %q", l, got)
		}
	}

	m.Handle(ctx, chat, "3")
	reply := m.Handle(ctx, chat, "2")
	parts := strings.Split(reply, "\n\n")
	if len(parts) != 2 {
		t.Fatalf("listing = %q, want 2 blank-line separated entries", reply)
	}
	// Two most recent, ascending: May 2 then May 3.
	if !strings.Contains(parts[0], "вторая") || !strings.Contains(parts[1], "третья") {
		t.Fatalf("listing order wrong: %q", reply)
	}
	if st := m.StateOf(chat); st != StateIdle {
		t.Fatalf("state after listing = %q", st)
	}

	// N larger than the record count returns everything.
	m.Handle(ctx, chat, "3")
	reply = m.Handle(ctx, chat, "100")
	if got := len(strings.Split(reply, "\n\n")); got != 3 {
		t.Fatalf("entries = %d, want 3", got)
	}
}

func TestListFlowRejectsSmallN(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(6)

	m.Handle(ctx, chat, "3")
	for _, input := range []string{"abc", "1", "0x10", "-2"} {
		if got := m.Handle(ctx, chat, input); got != workout.ErrBadArgs.Message {
			t.Fatalf("reply to %q = %q, want bad args", input, got)
		}
		if st := m.StateOf(chat); st != StateAwaitingListCount {
			t.Fatalf("state after %q = %q", input, st)
		}
	}
}

func TestResetFromAnyState(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(7)

	for _, cmd := range []string{"1", "2", "3"} {
		m.Handle(ctx, chat, cmd)
		if got := m.Handle(ctx, chat, "0"); got != Menu {
			t.Fatalf("reset from %q = %q, want menu", cmd, got)
		}
		if st := m.StateOf(chat); st != StateIdle {
			t.Fatalf("state after reset = %q", st)
		}
	}
}

func TestIdleDispatch(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()
	chat := int64(8)

	if got := m.Handle(ctx, chat, "0"); got != Menu {
		t.Fatalf("reply to 0 = %q", got)
	}
	if got := m.Handle(ctx, chat, "00"); got != Menu {
		t.Fatalf("reply to 00 = %q, integer zero shows the menu", got)
	}
	for _, input := range []string{"привет", "4", "-1", "1.5"} {
		if got := m.Handle(ctx, chat, input); got != MsgUnknownCommand {
			t.Fatalf("reply to %q = %q, want unknown command", input, got)
		}
		if st := m.StateOf(chat); st != StateIdle {
			t.Fatalf("state after %q = %q", input, st)
		}
	}
	// No lingering session entry after an unknown command.
	m.mu.Lock()
	_, lingering := m.states[chat]
	m.mu.Unlock()
	if lingering {
		t.Fatal("unknown command left a session entry behind")
	}
}

// failingStore returns a fixed error from every operation.
type failingStore struct {
	err error
}

func (f failingStore) Create(context.Context, *workout.Record) (int, error) { return 0, f.err }
func (f failingStore) ListRecent(context.Context, int) ([]workout.Record, error) {
	return nil, f.err
}
func (f failingStore) IDs(context.Context) (map[int]struct{}, error) { return nil, f.err }
func (f failingStore) Delete(context.Context, int) error             { return f.err }

func TestStoreUnavailableReplies(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.Join(workout.ErrStoreUnavailable, errors.New("dial tcp: refused"))
	m := NewMachine(failingStore{err: storeErr})
	chat := int64(9)

	m.Handle(ctx, chat, "1")
	if got := m.Handle(ctx, chat, recordLine); got != workout.ErrStoreUnavailable.Message {
		t.Fatalf("record flow reply = %q", got)
	}
	if st := m.StateOf(chat); st != StateAwaitingRecord {
		t.Fatalf("state = %q, store failure must keep the flow", st)
	}

	m.Handle(ctx, chat, "0")
	m.Handle(ctx, chat, "2")
	if got := m.Handle(ctx, chat, "5"); got != workout.ErrStoreUnavailable.Message {
		t.Fatalf("delete flow reply = %q", got)
	}

	m.Handle(ctx, chat, "0")
	m.Handle(ctx, chat, "3")
	if got := m.Handle(ctx, chat, "5"); got != workout.ErrStoreUnavailable.Message {
		t.Fatalf("list flow reply = %q", got)
	}
}

func TestUnexpectedErrorFallback(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(failingStore{err: errors.New("kaboom")})
	chat := int64(10)

	m.Handle(ctx, chat, "1")
	if got := m.Handle(ctx, chat, recordLine); got != MsgInternal {
		t.Fatalf("reply = %q, want generic fallback", got)
	}
}

func TestConcurrentTurnsStayConsistent(t *testing.T) {
	ctx := context.Background()
	m := newTestMachine()

	var wg sync.WaitGroup
	for chat := int64(100); chat < 120; chat++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				m.Handle(ctx, chat, "1")
				m.Handle(ctx, chat, recordLine)
				m.Handle(ctx, chat, "0")
			}
		}(chat)
	}
	// Concurrent messages to one chat as well.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				m.Handle(ctx, 999, "1")
				m.Handle(ctx, 999, "0")
			}
		}()
	}
	wg.Wait()

	if st := m.StateOf(999); st != StateIdle && st != StateAwaitingRecord {
		t.Fatalf("state = %q, want a defined state", st)
	}
}
