package checkout

import (
	"context"
	"sync"
	"time"
)

// State is the controller-local view of a checkout session. It is
// distinct from the gateway's payment enum: Pending means not yet
// submitted, Processing means submitted and polling.
type State string

const (
	StatePending    State = "pending"
	StateSubmitting State = "submitting"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Terminal reports whether the session has finished, for better or worse.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Session tracks one checkout from submission through payment
// confirmation. It is ephemeral and never persisted.
type Session struct {
	mu sync.Mutex

	sessionID         string
	orderID           string
	checkoutRequestID string
	state             State
	failureReason     string
	timedOut          bool
	startedAt         time.Time
	finishedAt        time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// Snapshot is an immutable view of a session for API responses.
type Snapshot struct {
	OrderID           string `json:"orderId,omitempty"`
	CheckoutRequestID string `json:"checkoutRequestId,omitempty"`
	State             State  `json:"state"`
	FailureReason     string `json:"failureReason,omitempty"`
	TimedOut          bool   `json:"timedOut,omitempty"`
}

func newSession(sessionID string) *Session {
	return &Session{
		sessionID: sessionID,
		state:     StateSubmitting,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		OrderID:           s.orderID,
		CheckoutRequestID: s.checkoutRequestID,
		State:             s.state,
		FailureReason:     s.failureReason,
		TimedOut:          s.timedOut,
	}
}

// Cancel tears down the session's polling work, if any is running.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) beginProcessing(orderID, checkoutRequestID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderID = orderID
	s.checkoutRequestID = checkoutRequestID
	s.state = StateProcessing
	s.cancel = cancel
}

func (s *Session) finish(state State, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = state
	s.failureReason = reason
	s.finishedAt = time.Now()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	close(s.done)
}

// finishTimeout marks the session failed because the polling window
// elapsed without a terminal payment state.
func (s *Session) finishTimeout(reason string) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.timedOut = true
	}
	s.mu.Unlock()
	s.finish(StateFailed, reason)
}

func (s *Session) elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startedAt)
}

// terminalSince reports when the session finished, if it has.
func (s *Session) terminalSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedAt, s.state.Terminal()
}

// terminalRetention is how long a finished session stays queryable via
// Status before it is swept from the indexes.
const terminalRetention = time.Hour

// Manager indexes live checkout sessions by order id so status can be
// looked up after submission. Terminal sessions are kept for a
// retention window so buyers can still read the outcome, then evicted
// on the next registration.
type Manager struct {
	mu        sync.RWMutex
	byOrder   map[string]*Session
	bySessID  map[string]*Session
	retention time.Duration
}

func NewManager() *Manager {
	return &Manager{
		byOrder:   make(map[string]*Session),
		bySessID:  make(map[string]*Session),
		retention: terminalRetention,
	}
}

func (m *Manager) register(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(time.Now())
	m.bySessID[sess.sessionID] = sess
}

func (m *Manager) sweepLocked(now time.Time) {
	for orderID, sess := range m.byOrder {
		if finished, terminal := sess.terminalSince(); terminal && now.Sub(finished) > m.retention {
			delete(m.byOrder, orderID)
		}
	}
	for sessionID, sess := range m.bySessID {
		if finished, terminal := sess.terminalSince(); terminal && now.Sub(finished) > m.retention {
			delete(m.bySessID, sessionID)
		}
	}
}

func (m *Manager) index(orderID string, sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byOrder[orderID] = sess
}

// ByOrder returns the session tracking the given order, or nil.
func (m *Manager) ByOrder(orderID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byOrder[orderID]
}

// CancelAll tears down every live session, used at shutdown.
func (m *Manager) CancelAll() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.bySessID))
	for _, sess := range m.bySessID {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()
	for _, sess := range sessions {
		sess.Cancel()
	}
}
