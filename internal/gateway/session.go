package gateway

import (
	"sync"
	"time"
)

// SessionState is where a chat currently is in a multi-step dialogue.
type SessionState string

const (
	StateIdle            SessionState = "idle"
	StateUploadTitle     SessionState = "upload_title"
	StateUploadThumbnail SessionState = "upload_thumbnail"
	StateUploadDuration  SessionState = "upload_duration"
	StateUploadLink      SessionState = "upload_link"
	StateAwaitProof      SessionState = "await_proof"
)

// VideoDraft accumulates the upload dialogue's answers until submission.
type VideoDraft struct {
	Title           string
	ThumbnailFileID string
	Duration        int
	Link            string
}

type Session struct {
	ChatID    int64
	State     SessionState
	Draft     VideoDraft
	UpdatedAt time.Time
}

// SessionStore keeps per-chat dialogue state in memory. Sessions are cheap to
// lose: a restart drops everyone back to idle and the bot re-prompts.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

func (s *SessionStore) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		session = &Session{ChatID: chatID, State: StateIdle, UpdatedAt: time.Now()}
		s.sessions[chatID] = session
	}
	return session
}

func (s *SessionStore) SetState(chatID int64, state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		session = &Session{ChatID: chatID}
		s.sessions[chatID] = session
	}
	session.State = state
	session.UpdatedAt = time.Now()
}

func (s *SessionStore) UpdateDraft(chatID int64, fn func(draft *VideoDraft)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		session = &Session{ChatID: chatID, State: StateIdle}
		s.sessions[chatID] = session
	}
	fn(&session.Draft)
	session.UpdatedAt = time.Now()
}

// Reset returns the chat to idle and clears any draft in progress.
func (s *SessionStore) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[chatID] = &Session{ChatID: chatID, State: StateIdle, UpdatedAt: time.Now()}
}
