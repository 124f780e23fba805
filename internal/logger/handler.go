package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const tsLayout = "2006-01-02T15:04:05.000Z07:00"

// lineOptions configures the line handler.
type lineOptions struct {
	minLevel slog.Leveler
	out      *sink
	json     bool
	order    []string
}

// lineHandler renders slog records as single KV or JSON lines with a
// pinned leading key order, so grep and jq pipelines stay stable.
type lineHandler struct {
	opts   lineOptions
	bound  []slog.Attr
	prefix string
}

func newLineHandler(opts lineOptions) *lineHandler {
	if opts.minLevel == nil {
		opts.minLevel = slog.LevelInfo
	}
	if len(opts.order) == 0 {
		opts.order = append([]string(nil), defaultKeyOrder...)
	}
	return &lineHandler{opts: opts}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.minLevel.Level()
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = append(append([]slog.Attr(nil), h.bound...), attrs...)
	return &next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.prefix != "" {
		next.prefix = h.prefix + "." + name
	} else {
		next.prefix = name
	}
	return &next
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.out == nil {
		return fmt.Errorf("logger: no output sink")
	}

	rec := record{index: make(map[string]int, 16)}
	ts := r.Time.UTC()
	rec.set("ts", ts.Truncate(time.Millisecond).Format(tsLayout))
	rec.set("level", normalizeLevel(r.Level.String()))
	if h.opts.json {
		rec.set("ts_unix_nano", ts.UnixNano())
	}

	for _, a := range h.bound {
		h.absorb(&rec, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.absorb(&rec, a)
		return true
	})

	h.mergeMeta(ctx, &rec)

	if rid := rec.str("rid"); rid != "" {
		if short := CompactRID(rid); short != rid {
			if h.opts.json {
				rec.setIfAbsent("rid_full", rid)
			}
			rec.set("rid", short)
		}
	}
	if rec.str("event") == "" {
		event := r.Message
		if event == "" {
			event = "unknown"
		}
		rec.set("event", event)
	}
	if rec.str("component") == "" {
		rec.set("component", "app")
	}

	if s := rec.str("status"); s != "" {
		if mapped, ok := normalizeStatus(s); ok {
			rec.set("status", mapped)
		}
	}
	if o := rec.str("outcome"); o != "" {
		if mapped, ok := normalizeOutcome(o); ok {
			rec.set("outcome", mapped)
		} else {
			rec.drop("outcome")
		}
	}
	rec.dropBlank()

	var line []byte
	var err error
	if h.opts.json {
		line, err = rec.jsonLine(h.opts.order)
	} else {
		line = rec.kvLine(h.opts.order)
	}
	if err != nil {
		return err
	}
	return h.opts.out.Write(append(line, '\n'))
}

// absorb flattens an attr (recursing into groups) into the record.
func (h *lineHandler) absorb(rec *record, a slog.Attr) {
	h.absorbPrefixed(rec, h.prefix, a)
}

func (h *lineHandler) absorbPrefixed(rec *record, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			h.absorbPrefixed(rec, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	k, v, ok := coerce(key, a.Value)
	if ok {
		rec.set(k, v)
	}
}

func (h *lineHandler) mergeMeta(ctx context.Context, rec *record) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		rec.setIfAbsent("rid", rid)
	}
	if id := UserIDFrom(ctx); id != 0 {
		rec.setIfAbsent("user_id", id)
	}
	if id := ChatIDFrom(ctx); id != 0 {
		rec.setIfAbsent("chat_id", id)
	}
	if id := UpdateIDFrom(ctx); id != 0 {
		rec.setIfAbsent("update_id", id)
	}
	if name := HandlerFrom(ctx); name != "" {
		rec.setIfAbsent("handler", name)
	}
}

// coerce maps a slog value to a loggable scalar. Durations become
// millisecond integers under a *_ms key.
func coerce(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u > math.MaxInt64 {
			return key, u, true
		}
		return key, int64(v.Uint64()), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := v.Any().(type) {
		case nil:
			return key, nil, false
		case error:
			return key, x.Error(), true
		case time.Duration:
			return msKey(key), RoundMS(x).Milliseconds(), true
		case string:
			return key, strings.TrimSpace(x), true
		case fmt.Stringer:
			return key, x.String(), true
		default:
			return key, fmt.Sprint(x), true
		}
	default:
		return key, v.Any(), true
	}
}

func msKey(key string) string {
	if key == "duration" {
		return "duration_ms"
	}
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

// record is an insertion-ordered field set.
type record struct {
	keys  []string
	vals  []any
	index map[string]int
}

func (r *record) set(key string, val any) {
	if i, ok := r.index[key]; ok {
		r.vals[i] = val
		return
	}
	r.index[key] = len(r.keys)
	r.keys = append(r.keys, key)
	r.vals = append(r.vals, val)
}

func (r *record) setIfAbsent(key string, val any) {
	if _, ok := r.index[key]; !ok {
		r.set(key, val)
	}
}

func (r *record) drop(key string) {
	if i, ok := r.index[key]; ok {
		r.vals[i] = nil
		delete(r.index, key)
	}
}

func (r *record) str(key string) string {
	i, ok := r.index[key]
	if !ok {
		return ""
	}
	switch v := r.vals[i].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (r *record) dropBlank() {
	for key, i := range r.index {
		switch v := r.vals[i].(type) {
		case nil:
			r.drop(key)
		case string:
			if v == "" {
				r.drop(key)
			}
		}
	}
}

// emitOrder returns keys with the pinned prefix first, then the rest
// alphabetically.
func (r *record) emitOrder(order []string) []string {
	out := make([]string, 0, len(r.index))
	seen := make(map[string]struct{}, len(order))
	for _, key := range order {
		if _, ok := r.index[key]; ok {
			out = append(out, key)
			seen[key] = struct{}{}
		}
	}
	head := len(out)
	for key := range r.index {
		if _, ok := seen[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out[head:])
	return out
}

func (r *record) kvLine(order []string) []byte {
	var b strings.Builder
	for i, key := range r.emitOrder(order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvToken(r.vals[r.index[key]]))
	}
	return []byte(b.String())
}

func kvToken(v any) string {
	s, isString := v.(string)
	if !isString {
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b)
		}
		s = fmt.Sprint(v)
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}

func (r *record) jsonLine(order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range r.emitOrder(order) {
		data, err := json.Marshal(r.vals[r.index[key]])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		b.WriteString(string(data))
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
