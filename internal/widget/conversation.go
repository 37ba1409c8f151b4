package widget

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"advisor-chat/internal/domain"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

const (
	WelcomeText = "Hello! I'm your OptiVise financial advisor. I'm here to help with investment strategies, " +
		"retirement planning, or any other financial questions you might have. What would you like assistance with today?"
	ApologyText = "I apologize, but I'm having trouble processing your request right now. Please try again later."
)

// Message is one rendered turn in the widget.
type Message struct {
	Sender    Sender
	Text      string
	Timestamp time.Time
}

type Relay interface {
	Send(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Conversation is the widget's in-memory history. It lives only as long as
// the value and is never persisted.
type Conversation struct {
	relay Relay
	now   func() time.Time

	// submitMu keeps one Submit in flight so each user turn is followed by
	// its own reply.
	submitMu sync.Mutex

	mu       sync.Mutex
	messages []Message
}

func NewConversation(relay Relay) *Conversation {
	c := &Conversation{relay: relay, now: time.Now}
	c.messages = []Message{{Sender: SenderBot, Text: WelcomeText, Timestamp: c.now()}}
	return c
}

// Submit appends text as a user turn, asks the relay for a reply and appends
// it as a bot turn. On failure the apology text is appended instead and the
// user turn stays in place. Blank input is ignored and reports false.
// Concurrent calls are serialised.
func (c *Conversation) Submit(ctx context.Context, text string) (Message, bool) {
	if strings.TrimSpace(text) == "" {
		return Message{}, false
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.mu.Lock()
	c.messages = append(c.messages, Message{Sender: SenderUser, Text: text, Timestamp: c.now()})
	history := toChatMessages(c.messages)
	c.mu.Unlock()

	reply, err := c.relay.Send(ctx, history)
	if err != nil {
		slog.Error("chat widget relay call failed", "err", err)
		reply = ApologyText
	}

	msg := Message{Sender: SenderBot, Text: reply, Timestamp: c.now()}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg, true
}

// Messages returns a copy of the history in conversation order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func toChatMessages(msgs []Message) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := domain.RoleAssistant
		if m.Sender == SenderUser {
			role = domain.RoleUser
		}
		out = append(out, domain.ChatMessage{Role: role, Content: m.Text})
	}
	return out
}
