package logger

import "strings"

// defaultKeyOrder is the pinned prefix of every log line. Keys outside
// this list follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event",
	"status", "outcome", "handler", "rid",
	"update_id", "chat_id", "user_id",
	"duration_ms", "err", "err_code",
}

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "", "info":
		return "INFO"
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	}
	return strings.ToUpper(level)
}

// normalizeStatus folds a status value onto the shared vocabulary.
func normalizeStatus(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok":
		return "ok", true
	case "fail":
		return "fail", true
	case "skip":
		return "skip", true
	case "retry":
		return "retry", true
	case "rate_limited":
		return "rate_limited", true
	case "cancelled":
		return "cancelled", true
	}
	return "", false
}

// normalizeOutcome folds an outcome value; unknown outcomes are dropped
// by the handler.
func normalizeOutcome(outcome string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "ok":
		return "ok", true
	case "fail":
		return "fail", true
	case "cancelled":
		return "cancelled", true
	case "rate_limited":
		return "rate_limited", true
	}
	return "", false
}
