package tripper

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyAudio
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyText:
		return "text"
	case ReplyAudio:
		return "audio"
	}
	return fmt.Sprintf("ReplyKind(%d)", int(k))
}

func (k ReplyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ReplyKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "text":
		*k = ReplyText
	case "audio":
		*k = ReplyAudio
	default:
		return fmt.Errorf("unknown reply kind %q", text)
	}
	return nil
}

// AudioRef points at a synthesized reply.
type AudioRef struct {
	URI         string `json:"uri"`
	ContentType string `json:"content_type"`
}

// AssistantSlot holds either prose or audio, never both.
type AssistantSlot struct {
	Kind  ReplyKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Audio *AudioRef `json:"audio,omitempty"`
}

func TextReply(text string) AssistantSlot {
	return AssistantSlot{Kind: ReplyText, Text: text}
}

func AudioReply(ref AudioRef) AssistantSlot {
	return AssistantSlot{Kind: ReplyAudio, Audio: &ref}
}

type Turn struct {
	ID        string        `json:"id"`
	UserText  string        `json:"user,omitempty"`
	Assistant AssistantSlot `json:"assistant"`
	// Open is true while the assistant reply is still being written
	Open bool `json:"open,omitempty"`
}

// Conversation is the history of one session. It is owned by a single caller
// and not safe for concurrent mutation.
type Conversation struct {
	turns []Turn
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Turns returns a copy of all turns, oldest first.
func (c *Conversation) Turns() []Turn {
	if c == nil {
		return nil
	}
	var turns []Turn
	if err := copier.CopyWithOption(&turns, c.turns, copier.Option{DeepCopy: true}); err != nil {
		logger.Warn("deep copy of conversation failed", "error", err)
		return slices.Clone(c.turns)
	}
	return turns
}

// Snapshot returns an independent copy of the conversation.
func (c *Conversation) Snapshot() Conversation {
	return Conversation{turns: c.Turns()}
}

func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.turns)
}

func (c *Conversation) Last() (Turn, bool) {
	if c == nil || len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

func (c *Conversation) HasOpenTurn() bool {
	last, ok := c.Last()
	return ok && last.Open
}

// Reset drops the whole history.
func (c *Conversation) Reset() {
	c.turns = nil
}

// ContextWindow returns a copy of the last depth turns.
func (c *Conversation) ContextWindow(depth int) []Turn {
	turns := c.Turns()
	if depth <= 0 || len(turns) <= depth {
		return turns
	}
	return turns[len(turns)-depth:]
}

func (c Conversation) MarshalJSON() ([]byte, error) {
	turns := c.turns
	if turns == nil {
		turns = []Turn{}
	}
	return json.Marshal(struct {
		Turns []Turn `json:"turns"`
	}{Turns: turns})
}

func (c *Conversation) openTurn(userText string) error {
	if c.HasOpenTurn() {
		return ErrTurnOpen
	}
	c.turns = append(c.turns, Turn{
		ID:        uuid.NewString(),
		UserText:  userText,
		Assistant: TextReply(""),
		Open:      true,
	})
	return nil
}

// setReply replaces the text of the open turn.
func (c *Conversation) setReply(text string) {
	if !c.HasOpenTurn() {
		return
	}
	c.turns[len(c.turns)-1].Assistant = TextReply(text)
}

func (c *Conversation) closeTurn(text string) {
	if !c.HasOpenTurn() {
		return
	}
	last := &c.turns[len(c.turns)-1]
	last.Assistant = TextReply(text)
	last.Open = false
}

func (c *Conversation) appendAudioTurn(ref AudioRef) error {
	if c.HasOpenTurn() {
		return ErrTurnOpen
	}
	c.turns = append(c.turns, Turn{
		ID:        uuid.NewString(),
		Assistant: AudioReply(ref),
	})
	return nil
}
