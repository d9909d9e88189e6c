package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/pulse/internal/series"
)

// ErrDecode wraps every inbound payload that fails the schema check.
var ErrDecode = errors.New("malformed event")

// Event is a decoded inbound reading routed to one channel.
type Event struct {
	Key    series.Key
	Sample series.Sample
}

// wireEvent is the accepted payload shape:
//
//	{"topic": "sensors/tempA", "value": 21.5, "time": "2024-05-01T10:00:00.000Z"}
//
// channelKey is accepted in place of topic.
type wireEvent struct {
	Topic      *string         `json:"topic"`
	ChannelKey *string         `json:"channelKey"`
	Value      json.RawMessage `json:"value"`
	Time       json.RawMessage `json:"time"`
}

// timeLayouts are tried in order for string timestamps that aren't epoch
// milliseconds. Layouts without a zone are read as local time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123Z,
	time.RFC1123,
}

// DecodeEvent validates and decodes one inbound payload. Unknown fields, a
// missing or empty channel key, a non-numeric value, and an unparsable time
// are all rejected with an error wrapping ErrDecode.
func DecodeEvent(raw []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var w wireEvent
	if err := dec.Decode(&w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Event{}, fmt.Errorf("%w: trailing data after payload", ErrDecode)
	}

	key, err := channelKey(w)
	if err != nil {
		return Event{}, err
	}

	value, err := parseValue(w.Value)
	if err != nil {
		return Event{}, err
	}

	ts, err := parseTime(w.Time)
	if err != nil {
		return Event{}, err
	}

	return Event{Key: key, Sample: series.Sample{Time: ts, Value: value}}, nil
}

func channelKey(w wireEvent) (series.Key, error) {
	var key string
	switch {
	case w.Topic != nil && w.ChannelKey != nil && *w.Topic != *w.ChannelKey:
		return "", fmt.Errorf("%w: topic %q and channelKey %q disagree", ErrDecode, *w.Topic, *w.ChannelKey)
	case w.Topic != nil:
		key = *w.Topic
	case w.ChannelKey != nil:
		key = *w.ChannelKey
	}

	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: missing channel key", ErrDecode)
	}
	return series.Key(key), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func parseValue(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, fmt.Errorf("%w: missing value", ErrDecode)
	}
	// JSON numbers start with a digit or '-'; strings, bools and objects don't
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, fmt.Errorf("%w: value %s is not a number", ErrDecode, raw)
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %s: %v", ErrDecode, raw, err)
	}
	return v, nil
}

// parseTime accepts an ISO-8601 string, a string of epoch milliseconds, or a
// bare JSON number of epoch milliseconds.
func parseTime(raw json.RawMessage) (int64, error) {
	if isNull(raw) {
		return 0, fmt.Errorf("%w: missing time", ErrDecode)
	}

	if raw[0] != '"' {
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: time %s is not a timestamp", ErrDecode, raw)
		}
		// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: time %s out of range", ErrDecode, raw)
		}
		return int64(f), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: time: %v", ErrDecode, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty time", ErrDecode)
	}

	ms, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return ms, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: time %q out of range", ErrDecode, s)
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UnixMilli(), nil
		}
	}
	// Date-only strings are UTC midnight
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UnixMilli(), nil
	}

	return 0, fmt.Errorf("%w: unparsable time %q", ErrDecode, s)
}
