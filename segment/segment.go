// Package segment defines the clip segment records produced by the
// segmentation step and validates them before any video is touched.
package segment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// timestampPattern accepts M:SS, MM:SS and H:MM:SS / HH:MM:SS.
var timestampPattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// ErrSchema is matched by every *SchemaError.
var ErrSchema = errors.New("segment schema mismatch")

// Segment is one span of the source video worth turning into a clip.
type Segment struct {
	Topic          string `json:"topic"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Transcript     string `json:"transcript,omitempty"`
	ViralPotential string `json:"viral_potential,omitempty"`
	ContentType    string `json:"content_type,omitempty"`
}

// SchemaError describes the first record that failed validation.
type SchemaError struct {
	Index  int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("failed to validate segment %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("failed to validate segment %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Is reports ErrSchema as a match so callers can use errors.Is.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// record mirrors Segment with pointer fields so missing keys can be told
// apart from empty strings.
type record struct {
	Topic          *string `json:"topic"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	Transcript     *string `json:"transcript"`
	ViralPotential *string `json:"viral_potential"`
	ContentType    *string `json:"content_type"`
}

// Decode parses a JSON segment list. It accepts a bare array or an object
// with a "segments" array, optionally wrapped in markdown code fences.
// One malformed record fails the whole list.
func Decode(data []byte) ([]Segment, error) {
	data = stripFences(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrSchema)
	}

	var raw []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode segment list: %v", ErrSchema, err)
		}
	case '{':
		var wrapper struct {
			Segments []json.RawMessage `json:"segments"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: decode segment list: %v", ErrSchema, err)
		}
		if wrapper.Segments == nil {
			return nil, fmt.Errorf("%w: object has no \"segments\" array", ErrSchema)
		}
		raw = wrapper.Segments
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object, got %s", ErrSchema, jsonKind(data))
	}

	segs := make([]Segment, 0, len(raw))
	for i, msg := range raw {
		seg, err := decodeRecord(i, msg)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}

	if err := Validate(segs); err != nil {
		return nil, err
	}
	return segs, nil
}

func decodeRecord(i int, msg json.RawMessage) (Segment, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || msg[0] != '{' {
		return Segment{}, &SchemaError{Index: i, Reason: fmt.Sprintf("unexpected type %s, expected object", jsonKind(msg))}
	}

	var r record
	if err := json.Unmarshal(msg, &r); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Segment{}, &SchemaError{Index: i, Field: typeErr.Field, Reason: fmt.Sprintf("expected string, got %s", typeErr.Value)}
		}
		return Segment{}, &SchemaError{Index: i, Reason: err.Error()}
	}

	if r.Topic == nil {
		return Segment{}, &SchemaError{Index: i, Field: "topic", Reason: "field required"}
	}
	if r.StartTime == nil {
		return Segment{}, &SchemaError{Index: i, Field: "start_time", Reason: "field required"}
	}
	if r.EndTime == nil {
		return Segment{}, &SchemaError{Index: i, Field: "end_time", Reason: "field required"}
	}

	return Segment{
		Topic:          *r.Topic,
		StartTime:      *r.StartTime,
		EndTime:        *r.EndTime,
		Transcript:     deref(r.Transcript),
		ViralPotential: deref(r.ViralPotential),
		ContentType:    deref(r.ContentType),
	}, nil
}

// Validate checks every segment's timestamps against the accepted pattern.
// The first failure is returned; no partial result is produced.
func Validate(segs []Segment) error {
	for i, s := range segs {
		if !timestampPattern.MatchString(s.StartTime) {
			return &SchemaError{Index: i, Field: "start_time", Reason: fmt.Sprintf("%q does not match M:SS, MM:SS or HH:MM:SS", s.StartTime)}
		}
		if !timestampPattern.MatchString(s.EndTime) {
			return &SchemaError{Index: i, Field: "end_time", Reason: fmt.Sprintf("%q does not match M:SS, MM:SS or HH:MM:SS", s.EndTime)}
		}
	}
	return nil
}

// Encode renders segments as indented JSON, the format Decode reads back.
func Encode(segs []Segment) ([]byte, error) {
	if segs == nil {
		segs = []Segment{}
	}
	return json.MarshalIndent(segs, "", "  ")
}

// stripFences removes markdown code fences from LLM output.
func stripFences(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}

func jsonKind(b []byte) string {
	if len(b) == 0 {
		return "nothing"
	}
	switch b[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
