package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/yami-cli/yami/pkg/errcode"
	"gopkg.in/yaml.v3"
)

// Noter lets a payload attach a follow-up line shown after its table in
// human mode. Machine output ignores it.
type Noter interface {
	Note() string
}

// Options configure a Renderer for one invocation.
type Options struct {
	Mode   Mode
	Format Format
	Quiet  bool
	Stdout io.Writer
	Stderr io.Writer
}

// Renderer projects envelopes to text. It never mutates them.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer, filling unset options with defaults.
func NewRenderer(opts Options) *Renderer {
	if opts.Mode == "" {
		opts.Mode = ModeHuman
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat(opts.Mode)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &Renderer{opts: opts}
}

// Render writes the envelope to the configured writers. Machine formats
// (the agent envelope and plain JSON/YAML) always go to stdout so
// consumers parse a single stream; styled human output sends errors to
// stderr.
func (r *Renderer) Render(e *Envelope) error {
	if r.opts.Mode == ModeAgent {
		return r.renderValue(e)
	}

	if r.opts.Format != FormatTable {
		return r.renderValue(plain(e))
	}

	if !e.OK {
		r.printError(e.Err)
		return nil
	}

	if m, ok := e.Data.(Message); ok {
		if !r.opts.Quiet {
			pterm.Success.WithWriter(r.opts.Stdout).Println(m.Message)
		}
		return nil
	}

	if err := r.renderTable(e.Data); err != nil {
		return err
	}
	r.printNote(e.Data)

	return nil
}

// plain is the legacy shape: bare data, {status,message} for mutations,
// {error: {...}} on failure.
func plain(e *Envelope) any {
	if !e.OK {
		return struct {
			Error *errcode.Error `json:"error"`
		}{e.Err}
	}

	if m, ok := e.Data.(Message); ok {
		return struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{"success", m.Message}
	}

	return e.Data
}

func (r *Renderer) renderValue(v any) error {
	if r.opts.Format == FormatYAML {
		raw, err := json.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "encoding output")
		}
		node, err := yamlNode(raw)
		if err != nil {
			return errors.Wrap(err, "encoding output")
		}

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return errors.Wrap(err, "encoding output")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "encoding output")
		}

		_, err = r.opts.Stdout.Write(buf.Bytes())
		return err
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	out = append(out, '\n')

	_, err = r.opts.Stdout.Write(out)
	return err
}

func (r *Renderer) printError(e *errcode.Error) {
	pterm.Error.WithWriter(r.opts.Stderr).Println(e.Message)
	if e.Hint != "" {
		fmt.Fprintln(r.opts.Stderr, pterm.FgGray.Sprint("Hint: "+e.Hint))
	}
}

func (r *Renderer) printNote(data any) {
	if r.opts.Quiet {
		return
	}
	if n, ok := data.(Noter); ok && n.Note() != "" {
		pterm.Info.WithWriter(r.opts.Stdout).Println(n.Note())
	}
}

func (r *Renderer) notice(msg string) error {
	if r.opts.Quiet {
		return nil
	}

	_, err := fmt.Fprintln(r.opts.Stdout, pterm.FgYellow.Sprint(msg))
	return err
}

// renderTable projects data through its JSON form: a list of objects
// becomes one column per key of the first row, a list of scalars a
// single Name column, a single object Property/Value rows.
func (r *Renderer) renderTable(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	raw = bytes.TrimSpace(raw)

	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return r.notice("No data")
	case raw[0] == '[':
		return r.listTable(raw)
	case raw[0] == '{':
		return r.propertyTable(raw)
	default:
		_, err := fmt.Fprintln(r.opts.Stdout, cellString(raw))
		return err
	}
}

func (r *Renderer) listTable(raw []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return errors.Wrap(err, "encoding output")
	}
	if len(items) == 0 {
		return r.notice("No data found")
	}

	first := bytes.TrimSpace(items[0])
	switch first[0] {
	case '{':
		keys, err := orderedKeys(first)
		if err != nil {
			return errors.Wrap(err, "encoding output")
		}

		td := pterm.TableData{keys}
		for _, item := range items {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(item, &fields); err != nil {
				return errors.Wrap(err, "encoding output")
			}
			row := make([]string, len(keys))
			for i, k := range keys {
				row[i] = cellString(fields[k])
			}
			td = append(td, row)
		}

		return r.table(td)
	case '"':
		td := pterm.TableData{{"Name"}}
		for _, item := range items {
			td = append(td, []string{cellString(item)})
		}

		return r.table(td)
	default:
		for _, item := range items {
			if _, err := fmt.Fprintln(r.opts.Stdout, cellString(item)); err != nil {
				return err
			}
		}
		return nil
	}
}

func (r *Renderer) propertyTable(raw []byte) error {
	keys, err := orderedKeys(raw)
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return errors.Wrap(err, "encoding output")
	}

	td := pterm.TableData{{"Property", "Value"}}
	for _, k := range keys {
		td = append(td, []string{k, cellString(fields[k])})
	}

	return r.table(td)
}

func (r *Renderer) table(td pterm.TableData) error {
	return pterm.DefaultTable.
		WithHasHeader().
		WithData(td).
		WithWriter(r.opts.Stdout).
		Render()
}

// cellString renders one JSON value for a table cell. Strings are
// unquoted, null becomes empty, everything else keeps its compact JSON
// form.
func cellString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	return string(raw)
}

// orderedKeys returns an object's keys in their serialized order, which
// for struct payloads is field declaration order.
func orderedKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}

	return keys, nil
}

// yamlNode converts a JSON document into a yaml node tree so the YAML
// rendering keeps the exact key order of the JSON rendering.
func yamlNode(raw []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	return decodeNode(dec)
}

func decodeNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.New("expected an object key")
				}
				n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key})

				val, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, val)
			}
			// Closing brace.
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				val, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, errors.Errorf("unexpected delimiter %v", t)
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}

	return nil, errors.Errorf("unexpected JSON token %v", tok)
}
