package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rickgao/cryptoverse/internal/model"
)

// Greeting opens every transcript.
const Greeting = "Hello! I'm your crypto assistant. Ask me anything about cryptocurrencies, blockchain, or the market!"

// DefaultMaxMessages bounds a transcript when no limit is given.
const DefaultMaxMessages = 100

var (
	// ErrNoReply is shown inline when the replier fails.
	ErrNoReply = errors.New("failed to get response from the chatbot")

	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned while a previous message is still being answered.
	ErrBusy = errors.New("previous message is still being answered")
)

// Replier answers one message.
type Replier interface {
	Send(ctx context.Context, message string) (string, error)
}

// Session is one conversation.
type Session struct {
	replier Replier
	logger  *slog.Logger
	max     int
	now     func() time.Time

	mu       sync.Mutex
	messages []model.ChatMessage
	pending  bool
}

// NewSession creates a Session whose transcript holds at most maxMessages
// entries, oldest dropped first.
func NewSession(replier Replier, maxMessages int, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}

	s := &Session{
		replier: replier,
		logger:  logger,
		max:     maxMessages,
		now:     time.Now,
	}
	s.messages = []model.ChatMessage{{Role: model.ChatRoleBot, Text: Greeting, At: s.now()}}
	return s
}

// Send appends text as a user message and asks the replier for an answer.
// On success the bot message is appended and returned.
func (s *Session) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return model.ChatMessage{}, ErrBusy
	}
	s.pending = true
	s.appendLocked(model.ChatMessage{Role: model.ChatRoleUser, Text: text, At: s.now()})
	s.mu.Unlock()

	start := time.Now()
	reply, err := s.replier.Send(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	if err != nil {
		s.logger.Warn("chat reply failed", "err", err, "duration", time.Since(start))
		return model.ChatMessage{}, ErrNoReply
	}

	msg := model.ChatMessage{Role: model.ChatRoleBot, Text: reply, At: s.now()}
	s.appendLocked(msg)
	s.logger.Debug("chat reply", "duration", time.Since(start), "len", len(reply))
	return msg, nil
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Pending reports whether a reply is outstanding.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) appendLocked(m model.ChatMessage) {
	s.messages = append(s.messages, m)
	if over := len(s.messages) - s.max; over > 0 {
		s.messages = append(s.messages[:0:0], s.messages[over:]...)
	}
}
