// Package callbacks parses telebot callback payloads.
package callbacks

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits raw callback data into its unique key and
// payload. Telebot prefixes the data with "\f" and separates the two
// parts with "|".
func ParseCallbackData(data string) (key, payload string) {
	key, payload, _ = strings.Cut(strings.TrimPrefix(data, "\f"), "|")
	return strings.TrimSpace(key), payload
}

func payload(c tele.Context) (string, error) {
	cb := c.Callback()
	if cb == nil {
		return "", fmt.Errorf("callbacks: not a callback update")
	}
	if cb.Unique != "" {
		return cb.Data, nil
	}
	_, p := ParseCallbackData(cb.Data)
	return p, nil
}

// PayloadInt reads the callback payload as a decimal integer.
func PayloadInt(c tele.Context) (int, error) {
	raw, err := payload(c)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("callbacks: bad int payload %q: %w", raw, err)
	}
	return n, nil
}
