// Package intake implements the service request dialogue: service type
// selection, problem description, optional tax id, contact details, and
// free-form reviews.
package intake

import (
	"sync"

	"github.com/homeservice/hsbot/core/logger"
	tghelpers "github.com/homeservice/hsbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// State identifies a dialogue step.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// StateAwaitingDescription waits for the problem description.
	StateAwaitingDescription State = "awaiting_description"
	// StateAwaitingTaxID waits for a company tax id.
	StateAwaitingTaxID State = "awaiting_tax_id"
	// StateAwaitingName waits for the contact name.
	StateAwaitingName State = "awaiting_name"
	// StateAwaitingPhone waits for the contact phone number.
	StateAwaitingPhone State = "awaiting_phone"
	// StateAwaitingReview waits for free-form review text.
	StateAwaitingReview State = "awaiting_review"
)

// Session accumulates dialogue answers for one user.
type Session struct {
	State       State
	IsCompany   bool
	Description string
	TaxID       string
	Name        string
	Phone       string
}

// Store keeps dialogue sessions in memory, keyed by Telegram user id.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	handlersMu sync.RWMutex
	handlers   map[State]tele.HandlerFunc

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewStore constructs an empty in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// userLock returns the mutex serializing dialogue dispatch for one user.
func (s *Store) userLock(userID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Get returns a snapshot of the user's session, or an idle session if none exists.
func (s *Store) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return *sess
	}
	return Session{State: StateIdle}
}

// Update applies fn to the user's session under the store lock,
// creating the session if necessary.
func (s *Store) Update(userID int64, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{State: StateIdle}
		s.sessions[userID] = sess
	}
	fn(sess)
}

// SetState sets the dialogue state for the given user.
func (s *Store) SetState(userID int64, st State) {
	s.Update(userID, func(sess *Session) { sess.State = st })
}

// GetState returns the current dialogue state, or StateIdle if none exists.
func (s *Store) GetState(userID int64) State {
	return s.Get(userID).State
}

// Clear removes the entire session for a user.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// InProgress reports whether the user currently has an active dialogue.
func (s *Store) InProgress(userID int64) bool {
	return s.GetState(userID) != StateIdle
}

// RegisterHandler associates a state with its handler.
func (s *Store) RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers[st] = h
}

// ManagerHandler executes the handler registered for the user's current state,
// if any. Dispatch is serialized per user so messages arriving close together
// cannot interleave dialogue steps.
func (s *Store) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	current := s.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	s.handlersMu.RLock()
	handler, ok := s.handlers[current]
	s.handlersMu.RUnlock()
	if ok {
		return handler(c)
	}
	return nil
}
