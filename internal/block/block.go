// Package block implements the unit-of-content abstraction of the editor
// core: one pluggable tool instance, its active tunes, the composed
// container tree, mutation observation, and input-focus bookkeeping.
//
// A Block owns exactly one tool instance, fixed at construction. The
// surrounding editor constructs Blocks from persisted data and reacts to
// their didMutated events; tools and tunes see the Block only through the
// restricted tool.BlockAPI facade.
package block

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/event"
	"github.com/frysweet/blockforge/internal/tool"
)

// EventDidMutated is emitted after the debounce window settles on a real
// content edit. The payload is the *Block that changed.
const EventDidMutated event.Topic = "block.didMutated"

// Construction errors.
var (
	ErrNilAdapter  = errors.New("block: nil tool adapter")
	ErrInvalidData = errors.New("block: tool data failed validation")
)

// Options carries the raw material a Block is constructed from.
type Options struct {
	// ID is the block identity. Generated when empty.
	ID string

	// Tool is the descriptor of the tool type producing this block.
	Tool tool.Adapter

	// Data is the persisted tool payload, understood only by the tool.
	Data json.RawMessage

	// TunesData maps tune names to their persisted payloads. Entries for
	// tunes absent from both tune sets are preserved, not dropped.
	TunesData map[string]json.RawMessage

	// Tunes are the user-level tune descriptors, in wrap order.
	Tunes []tool.TuneAdapter

	// DefaultTunes are the editor-level tune descriptors, in wrap order.
	// They wrap outside the user-level tunes.
	DefaultTunes []tool.TuneAdapter

	// ReadOnly is passed through to the tool instance.
	ReadOnly bool
}

// Block pairs one tool instance with its tunes and lifecycle bookkeeping.
type Block struct {
	id       string
	name     string
	settings json.RawMessage
	readOnly bool

	tool     tool.Tool
	toolRoot *dom.Element

	tunes            map[string]tool.Tune
	tuneOrder        []string
	defaultTunes     map[string]tool.Tune
	defaultTuneOrder []string
	unavailableTunes map[string]json.RawMessage

	holder  *dom.Element
	content *dom.Element

	emitter  *event.Emitter
	observer *dom.Observer
	logger   *zap.Logger

	debounce       time.Duration
	deprecatedOnce sync.Once

	// mu guards the debounce timer and the input cache.
	mu                sync.Mutex
	timer             *time.Timer
	cachedInputs      []*dom.Element
	currentInputIndex int
}

// New constructs a fully composed Block.
//
// Tool instantiation failure is fatal and propagates: a broken tool must not
// leave a half-built Block behind. Tune instantiation failure is isolated:
// the failure is logged and that tune's persisted data is treated as
// unavailable so a later save still round-trips it.
func New(opts Options, o ...Option) (*Block, error) {
	if opts.Tool == nil {
		return nil, ErrNilAdapter
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	b := &Block{
		id:               id,
		name:             opts.Tool.Name(),
		settings:         opts.Tool.Settings(),
		readOnly:         opts.ReadOnly,
		tunes:            make(map[string]tool.Tune),
		defaultTunes:     make(map[string]tool.Tune),
		unavailableTunes: make(map[string]json.RawMessage),
		emitter:          event.New(),
		logger:           zap.NewNop(),
		debounce:         ModificationsDebounce,
	}
	for _, opt := range o {
		opt(b)
	}

	api := &apiFacade{b: b}

	inst, err := opts.Tool.New(opts.Data, api, opts.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("block: instantiate tool %q: %w", b.name, err)
	}
	b.tool = inst

	b.composeTunes(opts, api)
	b.compose()

	b.observer = dom.NewObserver(b.didMutated)
	b.observer.Observe(b.holder)

	return b, nil
}

// composeTunes instantiates user-level and default tunes and captures
// persisted data for unknown tunes into the unavailable store.
func (b *Block) composeTunes(opts Options, api tool.BlockAPI) {
	known := make(map[string]bool)

	instantiate := func(a tool.TuneAdapter) (tool.Tune, bool) {
		name := a.Name()
		known[name] = true
		t, err := a.New(cloneRaw(b.settings), cloneRaw(opts.TunesData[name]), api)
		if err != nil || t == nil {
			b.logger.Warn("tune instantiation failed",
				zap.String("block", b.id),
				zap.String("tune", name),
				zap.Error(err))
			// Keep the tune's persisted data so the save path does not
			// silently drop it.
			if data, ok := opts.TunesData[name]; ok {
				b.unavailableTunes[name] = cloneRaw(data)
			}
			return nil, false
		}
		return t, true
	}

	for _, a := range opts.Tunes {
		if t, ok := instantiate(a); ok {
			b.tunes[a.Name()] = t
			b.tuneOrder = append(b.tuneOrder, a.Name())
		}
	}
	for _, a := range opts.DefaultTunes {
		if t, ok := instantiate(a); ok {
			b.defaultTunes[a.Name()] = t
			b.defaultTuneOrder = append(b.defaultTuneOrder, a.Name())
		}
	}

	for name, data := range opts.TunesData {
		if !known[name] {
			b.unavailableTunes[name] = cloneRaw(data)
		}
	}
}

// compose assembles the visual container: the tool's rendered content inside
// a content node, wrapped by each tune in order (user-level innermost, then
// editor-level), inside the wrapper node.
func (b *Block) compose() {
	b.toolRoot = b.tool.Render()
	if b.toolRoot == nil {
		b.toolRoot = dom.NewElement("div")
	}

	b.content = dom.NewElement("div")
	b.content.AddClass(ClassContent)
	b.content.AppendChild(b.toolRoot)

	wrapped := b.content
	for _, name := range b.tuneOrder {
		wrapped = b.wrapWith(b.tunes[name], name, wrapped)
	}
	for _, name := range b.defaultTuneOrder {
		wrapped = b.wrapWith(b.defaultTunes[name], name, wrapped)
	}

	b.holder = dom.NewElement("div")
	b.holder.AddClass(ClassWrapper)
	b.holder.AppendChild(wrapped)
}

// wrapWith applies one tune's wrapping. A tune that does not wrap, returns
// a detached node, or panics leaves the previous composition untouched.
func (b *Block) wrapWith(t tool.Tune, name string, current *dom.Element) (result *dom.Element) {
	w, ok := t.(tool.Wrapper)
	if !ok {
		return current
	}
	result = current
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("tune wrap panicked",
				zap.String("block", b.id),
				zap.String("tune", name),
				zap.Any("panic", r))
			result = current
		}
	}()
	wrapped := w.Wrap(current)
	if wrapped == nil || !wrapped.Contains(current) {
		b.logger.Warn("tune wrap returned a node not containing the content",
			zap.String("block", b.id),
			zap.String("tune", name))
		return current
	}
	return wrapped
}

// ID returns the block's stable identity.
func (b *Block) ID() string { return b.id }

// Name returns the tool type name that produced this block.
func (b *Block) Name() string { return b.name }

// Settings returns the tool-level configuration from the descriptor.
func (b *Block) Settings() json.RawMessage { return cloneRaw(b.settings) }

// ReadOnly reports whether the block was constructed read-only.
func (b *Block) ReadOnly() bool { return b.readOnly }

// Holder returns the composed container node.
func (b *Block) Holder() *dom.Element { return b.holder }

// Tool returns the live tool instance. The block keeps exclusive ownership;
// callers must not retain it past the block's lifetime.
func (b *Block) Tool() tool.Tool { return b.tool }

// Tunes returns the active tune instances, user-level first, each set in
// registration order.
func (b *Block) Tunes() []tool.Tune {
	out := make([]tool.Tune, 0, len(b.tuneOrder)+len(b.defaultTuneOrder))
	for _, name := range b.tuneOrder {
		out = append(out, b.tunes[name])
	}
	for _, name := range b.defaultTuneOrder {
		out = append(out, b.defaultTunes[name])
	}
	return out
}

// UnavailableTuneData returns the persisted payloads of tunes that were not
// registered when the block was built. The returned map is a copy.
func (b *Block) UnavailableTuneData() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(b.unavailableTunes))
	for name, data := range b.unavailableTunes {
		out[name] = cloneRaw(data)
	}
	return out
}

// OnDidMutated subscribes to this block's content-change notifications.
func (b *Block) OnDidMutated(fn func(*Block)) *event.Subscription {
	return b.emitter.Subscribe(EventDidMutated, func(payload any) {
		if blk, ok := payload.(*Block); ok {
			fn(blk)
		}
	})
}

// Events exposes the block's event emitter.
func (b *Block) Events() *event.Emitter { return b.emitter }

// Destroy disconnects mutation observation, stops any pending debounce
// timer, and releases tool and tune resources. The block must not be used
// afterwards.
func (b *Block) Destroy() {
	b.observer.Disconnect()
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	if d, ok := b.tool.(tool.Destroyer); ok {
		d.Destroy()
	}
	for _, t := range b.Tunes() {
		if d, ok := t.(tool.Destroyer); ok {
			d.Destroy()
		}
	}
}

// cloneRaw copies a raw JSON payload so callers and plugins cannot alias
// block-owned bytes.
func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
