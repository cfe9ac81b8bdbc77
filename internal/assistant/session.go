package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
)

// Message is one turn of the conversation transcript.
type Message struct {
	Role    enums.ChatRole `json:"role"`
	Content string         `json:"content"`
	At      time.Time      `json:"at"`
}

// Session holds per-conversation state: the transcript, the customer
// identity once learned, and the products most recently shown so that
// ordinal references ("the 2nd one") can be resolved. A session is owned
// by exactly one in-flight turn at a time; all access happens between
// BeginTurn and EndTurn.
type Session struct {
	ID     string
	Email  string
	Name   string
	UserID uuid.UUID

	Messages    []Message
	LastResults []models.Product

	resultsShown bool
	inFlight     bool
	lastSeen     time.Time
}

// Append records a transcript entry.
func (s *Session) Append(role enums.ChatRole, content string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content, At: at})
}

// Recent returns up to limit of the most recent transcript entries.
func (s *Session) Recent(limit int) []Message {
	if limit <= 0 || len(s.Messages) <= limit {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-limit:]
}

// SetResults replaces the products the customer was last shown. They
// become the referent for ordinal product references until overwritten.
func (s *Session) SetResults(products []models.Product) {
	s.LastResults = products
	s.resultsShown = true
}

// takeResultsShown reports whether SetResults ran since the last call.
func (s *Session) takeResultsShown() bool {
	shown := s.resultsShown
	s.resultsShown = false
	return shown
}

// Store keeps conversation sessions in memory, keyed by session id.
// Sessions idle longer than the TTL are dropped by Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
}

// NewStore constructs a session store. A non-positive idleTTL disables
// expiry.
func NewStore(idleTTL time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      now,
	}
}

// BeginTurn claims the session for one conversational turn, creating it
// on first contact. A blank id mints a fresh session. If another turn is
// already in flight for the same session the claim is rejected rather than
// queued; the transcript order would otherwise be ambiguous.
func (st *Store) BeginTurn(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}

	sess, ok := st.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		st.sessions[id] = sess
	}
	if sess.inFlight {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "another message is still being processed for this session")
	}
	sess.inFlight = true
	sess.lastSeen = st.now()
	return sess, nil
}

// EndTurn releases the session claimed by BeginTurn.
func (st *Store) EndTurn(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[id]; ok {
		sess.inFlight = false
		sess.lastSeen = st.now()
	}
}

// Sweep drops sessions idle past the TTL and returns how many were
// removed. In-flight sessions are never swept.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.idleTTL <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.idleTTL)
	removed := 0
	for id, sess := range st.sessions {
		if !sess.inFlight && sess.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.Sweep()
			}
		}
	}()
}

// Len reports how many sessions are live.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

type sessionKey struct{}

// withSession threads the claimed session through to tool handlers, which
// receive only a context from the model runtime.
func withSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}
