package app

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"sonachala/internal/domain"
)

// ErrCheckOutBeforeCheckIn rejects inverted stay windows.
var ErrCheckOutBeforeCheckIn = errors.New("check-out must not precede check-in")

// Session is one visitor's page-scope booking state: stay window, room
// selections, guest form, payment fields. All mutation goes through its
// mutex; the submission guard is separate so a long upstream call never
// blocks selection reads.
type Session struct {
	ID string

	mu            sync.Mutex
	stay          domain.StayWindow
	selections    map[string]domain.Selection
	guest         domain.GuestInfo
	paymentMethod string
	proof         *domain.ProofFile
	lastSeen      time.Time

	submitMu   sync.Mutex
	submitting bool
}

// DefaultStay is the window a fresh visit starts with: tonight, one night.
func DefaultStay(now time.Time) domain.StayWindow {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return domain.StayWindow{CheckIn: today, CheckOut: today.AddDate(0, 0, 1)}
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:         uuid.NewString(),
		stay:       DefaultStay(now),
		selections: make(map[string]domain.Selection),
		lastSeen:   now,
	}
}

// SetStay replaces the stay window. Both dates must be set and ordered.
func (s *Session) SetStay(w domain.StayWindow) error {
	if !w.Complete() {
		return domain.NewValidationError("stayWindow", "check-in and check-out dates are required")
	}
	if w.CheckOut.Before(w.CheckIn) {
		return ErrCheckOutBeforeCheckIn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stay = w
	return nil
}

func (s *Session) Stay() domain.StayWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stay
}

// SetSelection replaces the entry for the selection's room id. Setting
// the room count to zero clears the guest counts in the same update.
// Availability upper bounds are not checked here; that is the
// presentation boundary's job.
func (s *Session) SetSelection(sel domain.Selection) error {
	if !sel.Valid() {
		return domain.NewValidationError("selection", "counts must be non-negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[sel.RoomID] = sel.Normalize()
	return nil
}

// Selections returns a copy of the current selection map.
func (s *Session) Selections() map[string]domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Selection, len(s.selections))
	for k, v := range s.selections {
		out[k] = v
	}
	return out
}

// HasSelection reports whether any room type has a positive count.
func (s *Session) HasSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range s.selections {
		if sel.RoomCount > 0 {
			return true
		}
	}
	return false
}

// SetForm stores the guest form and payment fields so a failed
// submission leaves them intact for the retry.
func (s *Session) SetForm(g domain.GuestInfo, paymentMethod string, proof *domain.ProofFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guest = g
	s.paymentMethod = paymentMethod
	s.proof = proof
}

func (s *Session) Form() (domain.GuestInfo, string, *domain.ProofFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guest, s.paymentMethod, s.proof
}

// Reset clears selections, guest info, and payment fields. Called after
// a confirmed booking so stale state cannot be resubmitted.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = make(map[string]domain.Selection)
	s.guest = domain.GuestInfo{}
	s.paymentMethod = ""
	s.proof = nil
}

// BeginSubmit takes the submission guard. Returns false if another
// submission on this session is still in flight.
func (s *Session) BeginSubmit() bool {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Session) EndSubmit() {
	s.submitMu.Lock()
	s.submitting = false
	s.submitMu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionStore owns all live sessions. Sessions idle longer than the
// TTL are dropped by Sweep.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (st *SessionStore) Create() *Session {
	s := newSession(st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.touch(st.now())
	return s, nil
}

// Sweep drops sessions idle longer than the TTL and returns how many
// were removed.
func (st *SessionStore) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
