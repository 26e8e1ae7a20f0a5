// Package chat drives one live conversation between the user and a profile's
// twin.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/user/twinsim/internal/types"
	"github.com/user/twinsim/pkg/twin"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateSending
	StateFailed
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateFailed:
		return "failed"
	case StateEnded:
		return "ended"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// session's current state.
	ErrInvalidState = errors.New("chat session: invalid state")
	// ErrBusy is returned by Send while a previous message is awaiting the
	// twin's reply.
	ErrBusy = errors.New("chat session: reply pending")
)

// Backend is the subset of twin.Backend a Session needs.
type Backend interface {
	StartChat(ctx context.Context, profileID, userName string) (*twin.ChatStarted, error)
	SendMessage(ctx context.Context, chatID, message, msgContext string) (*twin.ChatReply, error)
	ChatHistory(ctx context.Context, chatID string) (*twin.ChatHistory, error)
	EndChat(ctx context.Context, chatID string) (*twin.ChatEnded, error)
}

// Session is a turn-based chat state machine. The transcript is append-only:
// a user turn is recorded before the twin is asked, and stays even if the
// twin never answers.
//
// The mutex guards state only and is never held across a backend call.
type Session struct {
	backend  Backend
	userName string
	msgCtx   string

	mu          sync.Mutex
	state       State
	chatID      types.ChatID
	profileName string
	profileMBTI string
	fondness    int
	transcript  []types.ChatTurn
}

// Option configures a Session.
type Option func(*Session)

// WithUserName sets the name the twin addresses the user by.
func WithUserName(name string) Option {
	return func(s *Session) { s.userName = name }
}

// WithContext sets the conversational context sent with each message.
func WithContext(c string) Option {
	return func(s *Session) { s.msgCtx = c }
}

// NewSession creates an uninitialized session.
func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend:  backend,
		userName: "You",
		msgCtx:   "texting",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the chat with the given profile's twin. It is only valid on a
// fresh session. A failed start is terminal; callers create a new Session to
// try again.
func (s *Session) Start(ctx context.Context, profileID string) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidState, state)
	}
	s.state = StateInitializing
	s.mu.Unlock()

	started, err := s.backend.StartChat(ctx, profileID, s.userName)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		slog.Error("failed to start chat", "profile_id", profileID, "error", err)
		return fmt.Errorf("start chat: %w", err)
	}
	s.chatID = types.ChatID(started.ChatID)
	s.profileName = started.ProfileName
	s.profileMBTI = started.ProfileMBTI
	s.fondness = started.InitialFondness
	s.state = StateReady
	slog.Info("chat started", "chat_id", started.ChatID, "profile", started.ProfileName, "fondness", started.InitialFondness)
	return nil
}

// Send posts one user message and records the twin's reply.
//
// Blank text, or a session without a chat id, is ignored without contacting
// the backend. A backend failure returns the session to ready with the user
// turn kept and no twin turn appended.
func (s *Session) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	if s.chatID == "" {
		s.mu.Unlock()
		return nil
	}
	switch s.state {
	case StateReady:
	case StateSending:
		s.mu.Unlock()
		return ErrBusy
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: send from %s", ErrInvalidState, state)
	}
	s.transcript = append(s.transcript, types.ChatTurn{
		ID:   types.NewTurnID(),
		Role: types.RoleUser,
		Text: text,
	})
	s.state = StateSending
	chatID := s.chatID
	s.mu.Unlock()

	reply, err := s.backend.SendMessage(ctx, string(chatID), text, s.msgCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSending {
		s.state = StateReady
	}
	if err != nil {
		slog.Error("failed to send message", "chat_id", string(chatID), "error", err)
		return fmt.Errorf("send message: %w", err)
	}
	s.transcript = append(s.transcript, types.ChatTurn{
		ID:              types.NewTurnID(),
		Role:            types.RoleTwin,
		Text:            reply.Message,
		Emotion:         reply.Emotion,
		InternalThought: reply.InternalThought,
		FondnessLevel:   reply.FondnessLevel,
		FondnessChange:  reply.FondnessChange,
	})
	// The backend's absolute level is authoritative; the change is display only.
	s.fondness = reply.FondnessLevel
	return nil
}

// History fetches the backend's view of the conversation.
func (s *Session) History(ctx context.Context) (*twin.ChatHistory, error) {
	s.mu.Lock()
	chatID := s.chatID
	s.mu.Unlock()
	if chatID == "" {
		return nil, fmt.Errorf("%w: no chat", ErrInvalidState)
	}
	h, err := s.backend.ChatHistory(ctx, string(chatID))
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	return h, nil
}

// End closes the chat on the backend and drops the transcript. It returns the
// backend's final fondness level.
func (s *Session) End(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.state != StateReady {
		state := s.state
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: end from %s", ErrInvalidState, state)
	}
	chatID := s.chatID
	s.mu.Unlock()

	ended, err := s.backend.EndChat(ctx, string(chatID))
	if err != nil {
		return 0, fmt.Errorf("end chat: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEnded
	s.transcript = nil
	s.fondness = ended.FinalFondness
	slog.Info("chat ended", "chat_id", string(chatID), "final_fondness", ended.FinalFondness)
	return ended.FinalFondness, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ChatID() types.ChatID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

func (s *Session) ProfileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileName
}

func (s *Session) ProfileMBTI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileMBTI
}

// CurrentFondness is the twin's latest fondness toward the user.
func (s *Session) CurrentFondness() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fondness
}

// Transcript returns a copy of the turns so far.
func (s *Session) Transcript() []types.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ChatTurn, len(s.transcript))
	copy(out, s.transcript)
	return out
}
