package plugin

import (
	"strings"
	"testing"
)

func TestMessagesLocalization(t *testing.T) {
	m := NewMessages()

	en := m.Get("en", MsgAuthSuccess)
	if !strings.Contains(en, "Welcome") {
		t.Errorf("en message = %q", en)
	}

	ko := m.Get("ko", MsgAuthSuccess)
	if ko == en {
		t.Error("korean catalog not used for ko")
	}
	if kr := m.Get("ko-KR", MsgAuthSuccess); kr != ko {
		t.Errorf("ko-KR did not match the korean catalog: %q", kr)
	}
}

func TestMessagesFallbackToEnglish(t *testing.T) {
	m := NewMessages()
	if got := m.Get("fr", MsgAuthSuccess); !strings.Contains(got, "Welcome") {
		t.Errorf("unsupported language did not fall back to english: %q", got)
	}
}

func TestMessagesFormatting(t *testing.T) {
	m := NewMessages()
	got := m.Get("en", MsgAuthIncorrect, 3)
	if !strings.Contains(got, "3") {
		t.Errorf("format argument not applied: %q", got)
	}
}

func TestMessagesUnknownKey(t *testing.T) {
	m := NewMessages()
	if got := m.Get("en", "NoSuchKey"); got != "NoSuchKey" {
		t.Errorf("unknown key = %q, want the key itself", got)
	}
}
