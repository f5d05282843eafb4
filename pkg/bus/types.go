package bus

// InboundKind distinguishes the three event shapes the dispatcher handles.
type InboundKind string

const (
	KindText     InboundKind = "text"     // a typed message fragment
	KindFile     InboundKind = "file"     // a complete uploaded document
	KindCallback InboundKind = "callback" // an inline button tap
)

type InboundMessage struct {
	Channel    string            `json:"channel"`
	SenderID   string            `json:"sender_id"`
	ChatID     string            `json:"chat_id"`
	Kind       InboundKind       `json:"kind"`
	Content    string            `json:"content"`
	CallbackID string            `json:"callback_id,omitempty"` // set for KindCallback
	MessageID  string            `json:"message_id,omitempty"`  // message carrying the tapped button
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Button is one inline keyboard button with its action token.
type Button struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

type OutboundMessage struct {
	Channel string     `json:"channel"`
	ChatID  string     `json:"chat_id"`
	Content string     `json:"content"`
	Buttons [][]Button `json:"buttons,omitempty"`

	// EditMessageID, when set, replaces an existing message instead of
	// sending a new one.
	EditMessageID string `json:"edit_message_id,omitempty"`

	// DeleteMessageID, when set, removes a previously sent message.
	// Delete failures are degraded, never fatal.
	DeleteMessageID string `json:"delete_message_id,omitempty"`

	// AudioPath points at a local audio artifact to deliver as a voice
	// note. The channel does not delete the file; the producer owns it.
	AudioPath  string `json:"audio_path,omitempty"`
	AudioTitle string `json:"audio_title,omitempty"`
}
