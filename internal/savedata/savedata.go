// Package savedata reads and writes the persisted form of editor documents:
// an ordered list of block records, each carrying a tool payload understood
// only by its tool plus per-tune payloads keyed by tune name.
//
// Tune payloads are handled as raw JSON and never re-encoded, so data for
// tunes the current editor build does not know survives a load/save cycle
// byte for byte.
package savedata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Parse errors.
var (
	ErrInvalidDocument = errors.New("savedata: invalid document")
	ErrMissingTool     = errors.New("savedata: block record without tool name")
)

// Saved is the persisted form of one block.
type Saved struct {
	ID    string
	Tool  string
	Data  json.RawMessage
	Tunes map[string]json.RawMessage
}

// Document is an ordered list of persisted blocks.
type Document struct {
	Blocks []Saved
}

// Parse decodes a persisted document of the form
// {"blocks":[{"id","tool","data","tunes"}...]}.
func Parse(raw []byte) (*Document, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidDocument
	}
	blocks := gjson.GetBytes(raw, "blocks")
	if !blocks.Exists() || !blocks.IsArray() {
		return nil, fmt.Errorf("%w: missing blocks array", ErrInvalidDocument)
	}

	doc := &Document{}
	var parseErr error
	blocks.ForEach(func(i, rec gjson.Result) bool {
		s, err := parseBlock(rec)
		if err != nil {
			parseErr = fmt.Errorf("block %d: %w", int(i.Int()), err)
			return false
		}
		doc.Blocks = append(doc.Blocks, s)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return doc, nil
}

// ParseBlock decodes a single block record.
func ParseBlock(raw []byte) (Saved, error) {
	if !gjson.ValidBytes(raw) {
		return Saved{}, ErrInvalidDocument
	}
	return parseBlock(gjson.ParseBytes(raw))
}

func parseBlock(rec gjson.Result) (Saved, error) {
	toolName := rec.Get("tool").String()
	if toolName == "" {
		return Saved{}, ErrMissingTool
	}
	s := Saved{
		ID:   rec.Get("id").String(),
		Tool: toolName,
	}
	if data := rec.Get("data"); data.Exists() {
		s.Data = rawResult(data)
	}
	if tunes := rec.Get("tunes"); tunes.Exists() && tunes.IsObject() {
		s.Tunes = make(map[string]json.RawMessage)
		tunes.ForEach(func(key, val gjson.Result) bool {
			s.Tunes[key.String()] = rawResult(val)
			return true
		})
	}
	return s, nil
}

// rawResult extracts the verbatim JSON bytes of a result.
func rawResult(r gjson.Result) json.RawMessage {
	return json.RawMessage(r.Raw)
}

// Marshal encodes a document, writing tool and tune payloads verbatim.
func Marshal(doc *Document) ([]byte, error) {
	out := []byte(`{"blocks":[]}`)
	for i, s := range doc.Blocks {
		rec, err := MarshalBlock(s)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out, err = sjson.SetRawBytes(out, "blocks.-1", rec)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return out, nil
}

// MarshalBlock encodes a single block record.
func MarshalBlock(s Saved) ([]byte, error) {
	if s.Tool == "" {
		return nil, ErrMissingTool
	}
	out := []byte(`{}`)
	var err error
	if s.ID != "" {
		if out, err = sjson.SetBytes(out, "id", s.ID); err != nil {
			return nil, err
		}
	}
	if out, err = sjson.SetBytes(out, "tool", s.Tool); err != nil {
		return nil, err
	}
	data := s.Data
	if data == nil {
		data = json.RawMessage(`{}`)
	}
	if out, err = sjson.SetRawBytes(out, "data", data); err != nil {
		return nil, err
	}
	for name, payload := range s.Tunes {
		if payload == nil {
			continue
		}
		if out, err = sjson.SetRawBytes(out, "tunes."+escapeKey(name), payload); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// escapeKey protects tune names containing sjson path syntax.
func escapeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '\\', '|', '#', '@':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
