package block

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/frysweet/blockforge/internal/tool"
)

// SavedData is the persisted form of one block.
type SavedData struct {
	ID   string          `json:"id"`
	Tool string          `json:"tool"`
	Data json.RawMessage `json:"data"`

	// Tunes holds each saving tune's payload plus, verbatim, the payloads
	// of tunes that were unavailable when the block was built.
	Tunes map[string]json.RawMessage `json:"tunes,omitempty"`
}

// Save extracts the block's current data: the tool's payload, each saving
// tune's payload, and the preserved payloads of unavailable tunes.
//
// When the tool implements tool.Validator and rejects its own extracted
// data, Save fails rather than producing a partial record.
func (b *Block) Save() (*SavedData, error) {
	data, err := b.tool.Save(b.toolRoot)
	if err != nil {
		return nil, fmt.Errorf("block: save tool %q: %w", b.name, err)
	}
	if v, ok := b.tool.(tool.Validator); ok && !v.Validate(data) {
		return nil, fmt.Errorf("%w: tool %q", ErrInvalidData, b.name)
	}

	tunes := make(map[string]json.RawMessage)
	saveTune := func(name string, t tool.Tune) {
		s, ok := t.(tool.TuneSaver)
		if !ok {
			return
		}
		if payload := s.Save(); payload != nil {
			tunes[name] = payload
		}
	}
	for _, name := range b.tuneOrder {
		saveTune(name, b.tunes[name])
	}
	for _, name := range b.defaultTuneOrder {
		saveTune(name, b.defaultTunes[name])
	}

	// Unavailable tune data re-enters the save unchanged so nothing is
	// lost across a load/save cycle through a leaner tune registry.
	var preserved map[string]json.RawMessage
	if err := copier.CopyWithOption(&preserved, b.unavailableTunes, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("block: copy unavailable tune data: %w", err)
	}
	for name, payload := range preserved {
		tunes[name] = payload
	}
	if len(tunes) == 0 {
		tunes = nil
	}

	return &SavedData{
		ID:    b.id,
		Tool:  b.name,
		Data:  data,
		Tunes: tunes,
	}, nil
}
