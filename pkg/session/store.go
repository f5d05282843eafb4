// Package session keeps per-user mutable state for the conversion
// pipeline: the accumulated text buffer, the pending debounce timer and
// the sticky voice preference. Sessions are partitioned by user id with
// no cross-user sharing.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrBufferFull is returned when an append would push the buffer past the
// configured limit. The fragment is not applied.
var ErrBufferFull = errors.New("text buffer limit reached")

// Session is the mutable state for one user. All exported methods are safe
// for concurrent use.
type Session struct {
	UserID string

	mu            sync.Mutex
	chatID        string
	buffer        []string
	timer         *time.Timer
	selectedVoice string
	inFlight      bool
}

// Store owns all sessions, keyed by user id.
type Store struct {
	mu             sync.RWMutex
	sessions       map[string]*Session
	maxBufferBytes int
}

// NewStore creates an empty store. maxBufferBytes of 0 disables the
// buffer size limit.
func NewStore(maxBufferBytes int) *Store {
	return &Store{
		sessions:       make(map[string]*Session),
		maxBufferBytes: maxBufferBytes,
	}
}

// Get returns the session for userID, creating an empty one on first
// access.
func (st *Store) Get(userID string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[userID]; ok {
		return s
	}
	s = &Session{UserID: userID}
	st.sessions[userID] = s
	return s
}

// Append adds one fragment to the user's buffer. Fragments are
// newline-joined when the buffer is read back.
func (st *Store) Append(userID, fragment string) error {
	s := st.Get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.maxBufferBytes > 0 {
		size := len(fragment)
		for _, f := range s.buffer {
			size += len(f) + 1
		}
		if size > st.maxBufferBytes {
			return ErrBufferFull
		}
	}

	s.buffer = append(s.buffer, fragment)
	return nil
}

// Clear empties the user's buffer and cancels any pending flush. The
// voice preference is untouched.
func (st *Store) Clear(userID string) {
	s := st.Get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = nil
	s.stopTimerLocked()
}

// SetVoice stores the user's sticky voice preference.
func (st *Store) SetVoice(userID, voiceID string) {
	s := st.Get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedVoice = voiceID
}

// VoiceOrDefault returns the user's preferred voice, or fallback if none
// was ever chosen.
func (st *Store) VoiceOrDefault(userID, fallback string) string {
	s := st.Get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedVoice == "" {
		return fallback
	}
	return s.selectedVoice
}

// Touch reschedules the user's flush: the pending timer, if any, is
// cancelled and a new one-shot timer is armed for delay from now. When it
// fires, onFlush runs exactly once with the session, unless the buffer
// was cleared in the meantime, in which case the fire is a no-op.
//
// N fragments arriving strictly within delay of one another therefore
// produce exactly one flush, after the last fragment's delay elapses.
func (st *Store) Touch(userID string, delay time.Duration, onFlush func(*Session)) {
	s := st.Get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.timer = nil
		empty := len(s.buffer) == 0
		s.mu.Unlock()
		if !empty {
			onFlush(s)
		}
	})
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Buffer returns the accumulated text, fragments joined by newlines.
func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.buffer, "\n")
}

// HasText reports whether any fragment is buffered.
func (s *Session) HasText() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer) > 0
}

func (s *Session) SetChatID(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatID = chatID
}

func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// TryBeginGenerate marks the session as generating. It returns false when
// a generation is already in flight; a second tap is rejected rather than
// queued.
func (s *Session) TryBeginGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// EndGenerate clears the in-flight mark.
func (s *Session) EndGenerate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}
