package tripper

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConversationAllowsSingleOpenTurn(t *testing.T) {
	conv := NewConversation()
	if err := conv.openTurn("first"); err != nil {
		t.Fatalf("failed to open turn: %v", err)
	}
	if err := conv.openTurn("second"); !errors.Is(err, ErrTurnOpen) {
		t.Fatalf("expected ErrTurnOpen, got %v", err)
	}
	if err := conv.appendAudioTurn(AudioRef{URI: "/audio/a.wav"}); !errors.Is(err, ErrTurnOpen) {
		t.Fatalf("expected ErrTurnOpen for audio turn, got %v", err)
	}

	conv.closeTurn("done")
	if err := conv.openTurn("second"); err != nil {
		t.Fatalf("expected new turn after close, got %v", err)
	}
	if conv.Len() != 2 {
		t.Fatalf("expected 2 turns, got %d", conv.Len())
	}
}

func TestConversationSnapshotIsDeepCopy(t *testing.T) {
	conv := NewConversation()
	_ = conv.appendAudioTurn(AudioRef{URI: "/audio/a.wav", ContentType: "audio/wav"})

	snapshot := conv.Snapshot()
	turns := snapshot.Turns()
	turns[0].Assistant.Audio.URI = "changed"

	last, _ := conv.Last()
	if last.Assistant.Audio.URI != "/audio/a.wav" {
		t.Fatalf("snapshot shares audio reference with conversation")
	}
}

func TestContextWindow(t *testing.T) {
	conv := NewConversation()
	for _, text := range []string{"a", "b", "c", "d"} {
		_ = conv.openTurn(text)
		conv.closeTurn(strings.ToUpper(text))
	}

	window := conv.ContextWindow(3)
	if len(window) != 3 || window[0].UserText != "b" {
		t.Fatalf("unexpected window %+v", window)
	}
	if got := len(conv.ContextWindow(10)); got != 4 {
		t.Fatalf("expected whole history, got %d", got)
	}
}

func TestConversationJSON(t *testing.T) {
	conv := NewConversation()
	_ = conv.openTurn("Hi")
	conv.closeTurn("Hello")
	_ = conv.appendAudioTurn(AudioRef{URI: "/audio/a.wav", ContentType: "audio/wav"})

	data, err := json.Marshal(conv.Snapshot())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		Turns []Turn `json:"turns"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %s", data)
	}
	if decoded.Turns[0].Assistant.Kind != ReplyText || decoded.Turns[1].Assistant.Kind != ReplyAudio {
		t.Fatalf("unexpected kinds in %s", data)
	}

	empty, _ := json.Marshal(NewConversation().Snapshot())
	if string(empty) != `{"turns":[]}` {
		t.Fatalf("unexpected empty conversation %s", empty)
	}
}

func TestReset(t *testing.T) {
	conv := NewConversation()
	_ = conv.openTurn("Hi")
	conv.Reset()
	if conv.Len() != 0 || conv.HasOpenTurn() {
		t.Fatalf("expected empty conversation")
	}
}

func TestLanguageCode(t *testing.T) {
	for choice, want := range map[string]string{
		"🇯🇵 日本語":  "ja",
		"Deutsch":   "de",
		"🇨🇳 中文":   "zh",
		"Esperanto": "en",
		"":          "en",
	} {
		if got := LanguageCode(choice); got != want {
			t.Fatalf("LanguageCode(%q) = %q, want %q", choice, got, want)
		}
	}
}
