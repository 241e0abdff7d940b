// Package chat describes the messaging surface the dialog talks to.
package chat

import "context"

// Handle identifies a message previously sent to a chat.
type Handle struct {
	MessageID int `json:"message_id"`
}

func (h Handle) IsZero() bool { return h.MessageID == 0 }

// Button is an inline button. Exactly one of Data or URL is set.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Message is an outgoing message. When PhotoURL is set Text becomes the caption.
type Message struct {
	Text     string
	PhotoURL string
	Inline   [][]Button
	// Reply replaces the persistent reply keyboard; RemoveReply hides it.
	Reply       [][]string
	RemoveReply bool
	// MarkupOnly limits an edit to the inline keyboard.
	MarkupOnly bool
	// Location attaches coordinates instead of text.
	Location *Location
}

type Location struct {
	Lat float64
	Lon float64
}

// Transport sends, edits and deletes messages in a chat.
type Transport interface {
	Send(ctx context.Context, chatID string, msg Message) (Handle, error)
	Edit(ctx context.Context, chatID string, h Handle, msg Message) error
	Delete(ctx context.Context, chatID string, h Handle) error
}

type EventKind string

const (
	EventText   EventKind = "text"
	EventButton EventKind = "button"
)

// Event is one inbound user action.
type Event struct {
	Kind     EventKind
	ChatID   string
	UserID   string
	UserName string
	// Text carries the message text or the button payload.
	Text string
	// Message is the user's message, or the message the pressed button belongs to.
	Message Handle
}

// SessionKey is the key under which the dialog state of this event lives.
func (e Event) SessionKey() string {
	return e.ChatID
}
