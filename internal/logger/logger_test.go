package logger

import "testing"

func TestBufferLogger_CapturesLevels(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	if len(l.Messages) != 4 {
		t.Fatalf("captured %d messages, want 4", len(l.Messages))
	}

	if l.Messages[0].Message != "debug 1" {
		t.Errorf("Messages[0].Message = %q, want %q", l.Messages[0].Message, "debug 1")
	}

	for _, level := range []string{"debug", "info", "warn", "error"} {
		if !l.HasLevel(level) {
			t.Errorf("HasLevel(%q) = false, want true", level)
		}
	}
}

func TestBufferLogger_Clear(t *testing.T) {
	l := NewBufferLogger()
	l.Info("something")
	l.Clear()

	if len(l.Messages) != 0 {
		t.Errorf("Clear left %d messages", len(l.Messages))
	}
}

func TestNoop_DiscardsEverything(t *testing.T) {
	l := Noop()

	// Should not panic or emit anything.
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
}

func TestSetDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	buf := NewBufferLogger()
	SetDefault(buf)

	Default().Info("hello")

	if !buf.HasLevel("info") {
		t.Error("default logger did not route to the buffer")
	}
}
