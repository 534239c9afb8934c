// Package session implements the per-chat conversational state machine:
// which command a chat is currently inside and how inbound text advances
// it.
package session

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"trainbot/internal/logger"
	"trainbot/internal/workout"

	"log/slog"
)

// State identifies the pending command of a chat.
type State string

const (
	// StateIdle indicates no command in progress.
	StateIdle State = "idle"
	// StateAwaitingRecord means the next message is a workout line.
	StateAwaitingRecord State = "awaiting_record"
	// StateAwaitingDeleteID means the next message is an id to delete.
	StateAwaitingDeleteID State = "awaiting_delete_id"
	// StateAwaitingListCount means the next message is a listing count.
	StateAwaitingListCount State = "awaiting_list_count"
)

// resetInput returns any session to the menu regardless of state.
const resetInput = "0"

// Store is the persistence surface the machine drives.
type Store interface {
	Create(ctx context.Context, rec *workout.Record) (int, error)
	ListRecent(ctx context.Context, n int) ([]workout.Record, error)
	IDs(ctx context.Context) (map[int]struct{}, error)
	Delete(ctx context.Context, id int) error
}

// Machine owns all chat session state. Transitions for one chat are
// serialized by a per-chat lock held across the whole turn, so two
// interleaved messages from the same chat can never lose an update or
// run a flow against a half-changed state.
type Machine struct {
	store Store

	mu     sync.Mutex
	states map[int64]State
	locks  map[int64]*sync.Mutex
}

// NewMachine constructs an idle machine over the given store.
func NewMachine(store Store) *Machine {
	return &Machine{
		store:  store,
		states: make(map[int64]State),
		locks:  make(map[int64]*sync.Mutex),
	}
}

// Handle advances the session of chatID with one inbound message and
// returns the reply text. It never returns an empty reply.
func (m *Machine) Handle(ctx context.Context, chatID int64, text string) string {
	unlock := m.lock(chatID)
	defer unlock()

	text = strings.TrimSpace(text)

	// Global reset: "0" aborts whatever is pending and shows the menu
	// before any state-specific handling runs.
	if text == resetInput {
		m.clear(chatID)
		return Menu
	}

	st := m.StateOf(chatID)
	logger.Debug(ctx, "session", "fsm.dispatch",
		slog.Int64("chat_id", chatID),
		slog.String("state", string(st)),
	)

	switch st {
	case StateAwaitingRecord:
		return m.handleRecord(ctx, chatID, text)
	case StateAwaitingDeleteID:
		return m.handleDelete(ctx, chatID, text)
	case StateAwaitingListCount:
		return m.handleList(ctx, chatID, text)
	default:
		return m.dispatchIdle(ctx, chatID, text)
	}
}

// StateOf reports the pending state of a chat; absence means idle.
func (m *Machine) StateOf(chatID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[chatID]; ok {
		return st
	}
	return StateIdle
}

func (m *Machine) dispatchIdle(ctx context.Context, chatID int64, text string) string {
	cmd, err := strconv.Atoi(text)
	if err != nil {
		m.clear(chatID)
		return MsgUnknownCommand
	}
	switch cmd {
	case 0:
		m.clear(chatID)
		return Menu
	case 1:
		m.set(chatID, StateAwaitingRecord)
		return MsgEnterRecord
	case 2:
		m.set(chatID, StateAwaitingDeleteID)
		return MsgEnterDeleteID
	case 3:
		m.set(chatID, StateAwaitingListCount)
		return MsgEnterListCount
	default:
		m.clear(chatID)
		return MsgUnknownCommand
	}
}

func (m *Machine) handleRecord(ctx context.Context, chatID int64, text string) string {
	rec, err := workout.Parse(text)
	if err != nil {
		// State kept so the user can correct the line.
		return m.errorReply(ctx, chatID, err)
	}
	id, err := m.store.Create(ctx, rec)
	if err != nil {
		return m.errorReply(ctx, chatID, err)
	}
	m.clear(chatID)
	logger.Info(ctx, "session", "record.saved",
		slog.Int64("chat_id", chatID),
		slog.Int("record_id", id),
	)
	return MsgSavedPrefix + strconv.Itoa(id)
}

func (m *Machine) handleDelete(ctx context.Context, chatID int64, text string) string {
	id, err := strconv.Atoi(text)
	if err != nil {
		// No re-prompt: the session silently keeps awaiting a valid id.
		return workout.ErrBadArgs.Message
	}
	ids, err := m.store.IDs(ctx)
	if err != nil {
		return m.errorReply(ctx, chatID, err)
	}
	if _, ok := ids[id]; !ok {
		return workout.ErrBadID.Message
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return m.errorReply(ctx, chatID, err)
	}
	m.clear(chatID)
	logger.Info(ctx, "session", "record.deleted",
		slog.Int64("chat_id", chatID),
		slog.Int("record_id", id),
	)
	return MsgDeleted
}

func (m *Machine) handleList(ctx context.Context, chatID int64, text string) string {
	n, err := strconv.Atoi(text)
	if err != nil || n <= 1 {
		return workout.ErrBadArgs.Message
	}
	recs, err := m.store.ListRecent(ctx, n)
	if err != nil {
		return m.errorReply(ctx, chatID, err)
	}
	m.clear(chatID)
	logger.Debug(ctx, "session", "record.listed",
		slog.Int64("chat_id", chatID),
		slog.Int("count", len(recs)),
	)
	if len(recs) == 0 {
		return MsgHistoryEmpty
	}
	lines := make([]string, len(recs))
	for i := range recs {
		lines[i] = workout.FormatLine(&recs[i])
	}
	return strings.Join(lines, "\n\n")
}

// errorReply maps an error to its fixed user message, falling back to a
// generic reply for anything outside the taxonomy. The session state is
// left untouched so the user may retry.
func (m *Machine) errorReply(ctx context.Context, chatID int64, err error) string {
	logger.Warn(ctx, "session", "flow.error",
		slog.Int64("chat_id", chatID),
		slog.String("state", string(m.StateOf(chatID))),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.String("err_code", workout.ErrorCode(err)),
	)
	if msg, ok := workout.UserMessage(err); ok {
		return msg
	}
	return MsgInternal
}

func (m *Machine) set(chatID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = st
}

func (m *Machine) clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
}

// lock serializes turns per chat. Lock entries are small and live for the
// process lifetime.
func (m *Machine) lock(chatID int64) func() {
	m.mu.Lock()
	l, ok := m.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[chatID] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}
