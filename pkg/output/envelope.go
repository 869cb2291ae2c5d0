package output

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/yami-cli/yami/pkg/errcode"
)

// Mode selects which of the two response shapes an invocation emits.
type Mode string

const (
	// ModeAgent wraps every outcome in the structured envelope.
	ModeAgent Mode = "agent"

	// ModeHuman emits bare data: tables and styled messages by default,
	// or unwrapped JSON/YAML when requested.
	ModeHuman Mode = "human"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAgent, ModeHuman:
		return Mode(s), nil
	}

	return "", errcode.Newf(errcode.ValidationError, "invalid mode %q (valid: agent, human)", s)
}

// Format is the serialization applied to rendered output.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML, FormatTable:
		return Format(s), nil
	}

	return "", errcode.Newf(errcode.ValidationError, "invalid output format %q (valid: json, yaml, table)", s)
}

// DefaultFormat returns the format used when none is requested.
func DefaultFormat(m Mode) Format {
	if m == ModeAgent {
		return FormatJSON
	}

	return FormatTable
}

// ValidateFormat rejects mode/format pairs that have no defined rendering.
func ValidateFormat(m Mode, f Format) error {
	if m == ModeAgent && f == FormatTable {
		return errcode.New(errcode.ValidationError, "output format table is not valid in agent mode (use json or yaml)")
	}

	return nil
}

// Message is the payload mutating operations return. Renderers wrap it
// per mode: {"message": ...} inside the envelope, {"status", "message"}
// in plain output, a styled success line on a terminal.
type Message struct {
	Message string `json:"message"`
}

// Messagef builds a Message payload.
func Messagef(format string, args ...any) Message {
	return Message{Message: fmt.Sprintf(format, args...)}
}

// Meta describes the operation that produced an envelope.
type Meta struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Count      *int   `json:"count,omitempty"`
}

// Envelope is the uniform wrapper around every operation outcome.
// Exactly one of Data and Err is meaningful, selected by OK.
type Envelope struct {
	OK   bool
	Data any
	Err  *errcode.Error
	Meta *Meta
}

// Build wraps an operation outcome for the given command. Faults that
// were not already classified become CONNECTION_ERROR with the original
// message preserved verbatim and no hint.
func Build(command string, data any, err error, duration time.Duration) *Envelope {
	meta := &Meta{
		Command:    command,
		DurationMS: duration.Milliseconds(),
	}

	if err != nil {
		e, ok := errcode.From(err)
		if !ok {
			e = errcode.Bare(errcode.ConnectionError, err.Error())
		}
		return &Envelope{OK: false, Err: e, Meta: meta}
	}

	if n, ok := sequenceLen(data); ok {
		meta.Count = &n
	}

	return &Envelope{OK: true, Data: data, Meta: meta}
}

// UsageError wraps a pre-dispatch argument failure. No operation ran,
// so the envelope carries no meta.
func UsageError(err error) *Envelope {
	e, ok := errcode.From(err)
	if !ok {
		e = errcode.Bare(errcode.ValidationError, err.Error())
	}

	return &Envelope{OK: false, Err: e}
}

// MarshalJSON emits keys in a fixed order: ok, data or error, meta.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	if e.OK {
		return json.Marshal(struct {
			OK   bool  `json:"ok"`
			Data any   `json:"data"`
			Meta *Meta `json:"meta,omitempty"`
		}{e.OK, e.Data, e.Meta})
	}

	return json.Marshal(struct {
		OK    bool           `json:"ok"`
		Error *errcode.Error `json:"error"`
		Meta  *Meta          `json:"meta,omitempty"`
	}{e.OK, e.Err, e.Meta})
}

// sequenceLen reports the length of slice or array payloads. Anything
// else, including strings and byte slices, is not a sequence for count
// purposes.
func sequenceLen(data any) (int, bool) {
	if data == nil {
		return 0, false
	}
	if _, isBytes := data.([]byte); isBytes {
		return 0, false
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}

	return 0, false
}
