package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, jsonFormat bool) (*slog.Logger, *bytes.Buffer, *sink) {
	t.Helper()
	buf := &bytes.Buffer{}
	out := newSink([]io.Writer{buf}, 256)
	h := newLineHandler(lineOptions{
		minLevel: slog.LevelDebug,
		out:      out,
		json:     jsonFormat,
	})
	return slog.New(h), buf, out
}

func flushed(t *testing.T, buf *bytes.Buffer, out *sink) string {
	t.Helper()
	if err := out.Close(); err != nil {
		t.Fatalf("sink close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestHandlerKVKeyOrder(t *testing.T) {
	log, buf, out := newTestLogger(t, false)
	ctx := WithUpdateMeta(WithRID(Background(), "rid-123"), 42, 7, 9)

	LogEvent(ctx, log.With("component", "app"), slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)

	line := flushed(t, buf, out)
	if line == "" {
		t.Fatal("no output")
	}
	want := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	parts := strings.Split(line, " ")
	for i, prefix := range want {
		if i >= len(parts) || !strings.HasPrefix(parts[i], prefix) {
			t.Fatalf("field %d: want prefix %q in %q", i, prefix, line)
		}
	}
	if !strings.Contains(line, "user_id=7") || !strings.Contains(line, "chat_id=9") {
		t.Fatalf("context ids missing: %q", line)
	}
}

func TestHandlerJSONKeyOrder(t *testing.T) {
	log, buf, out := newTestLogger(t, true)
	ctx := WithRID(Background(), "rid-json")

	LogEvent(ctx, log.With("component", "service.forms"), slog.LevelError, "form.save.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)

	line := flushed(t, buf, out)
	if !strings.HasPrefix(line, `{"ts":`) {
		t.Fatalf("want JSON object, got %q", line)
	}
	pos := -1
	for _, marker := range []string{`"level":"ERROR"`, `"component":"service.forms"`, `"event":"form.save.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`} {
		i := strings.Index(line, marker)
		if i < 0 {
			t.Fatalf("marker %q missing in %q", marker, line)
		}
		if i < pos {
			t.Fatalf("marker %q out of order in %q", marker, line)
		}
		pos = i
	}
}

func TestHandlerCompactsNumericRID(t *testing.T) {
	log, buf, out := newTestLogger(t, false)
	ctx := WithRID(Background(), "123:456:789")

	LogEvent(ctx, log, slog.LevelInfo, "rid.check")

	line := flushed(t, buf, out)
	if !strings.Contains(line, "rid="+CompactRID("123:456:789")) {
		t.Fatalf("rid not compacted: %q", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full must stay out of KV output: %q", line)
	}
}

func TestHandlerDurationBecomesMillis(t *testing.T) {
	log, buf, out := newTestLogger(t, false)

	LogEvent(Background(), log, slog.LevelInfo, "timing",
		slog.Duration("duration", 1500*1000*1000), // 1.5s
	)

	line := flushed(t, buf, out)
	if !strings.Contains(line, "duration_ms=1500") {
		t.Fatalf("duration not converted: %q", line)
	}
}

func TestHandlerDropsBlankFields(t *testing.T) {
	log, buf, out := newTestLogger(t, false)

	LogEvent(Background(), log, slog.LevelInfo, "blank.check",
		slog.String("empty", ""),
		slog.String("kept", "v"),
	)

	line := flushed(t, buf, out)
	if strings.Contains(line, "empty=") {
		t.Fatalf("blank field leaked: %q", line)
	}
	if !strings.Contains(line, "kept=v") {
		t.Fatalf("non-blank field lost: %q", line)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("hello\x00world\x7f!", 8); got != "hellowor" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if SanitizeLimit("abc", 0) != "" {
		t.Fatal("zero limit must yield empty string")
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 4)
	admitted := 0
	for i := 0; i < 40; i++ {
		if s.Allow() {
			admitted++
		}
	}
	if admitted != 10 {
		t.Fatalf("admitted %d of 40, want 10", admitted)
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("zero ratio must admit everything")
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := []struct {
		in       string
		num, den int
	}{
		{"1/50", 1, 50},
		{"3/10", 3, 10},
		{"25", 1, 25},
		{"", 0, 0},
		{"bogus", 0, 0},
	}
	for _, tc := range cases {
		num, den := parseRatioSpec(tc.in)
		if num != tc.num || den != tc.den {
			t.Errorf("parseRatioSpec(%q) = %d/%d, want %d/%d", tc.in, num, den, tc.num, tc.den)
		}
	}
}
