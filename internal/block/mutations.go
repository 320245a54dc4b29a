package block

import (
	"time"

	"github.com/frysweet/blockforge/internal/dom"
	"github.com/frysweet/blockforge/internal/tool"
)

// ModificationsDebounce is the quiet period after the last observed content
// mutation before the block notifies its tool and subscribers. The value is
// part of the behavioral contract with tool authors.
const ModificationsDebounce = 450 * time.Millisecond

// didMutated receives one batch of mutation records from the observer and
// decides whether it represents a real content edit.
//
// A batch is suppressed entirely, with no side effects, when any added or
// removed node carries the mutation-free marker: tools use the marker for
// internal DOM bookkeeping that must not mark the document dirty. Attribute
// changes on the block's own wrapper and content nodes are structural noise
// (focus/selection markers) and never count as edits either.
func (b *Block) didMutated(records []dom.Record) {
	meaningful := false
	for _, rec := range records {
		for _, n := range rec.AddedNodes {
			if n.MutationFree() {
				return
			}
		}
		for _, n := range rec.RemovedNodes {
			if n.MutationFree() {
				return
			}
		}
		if !b.structuralNoise(rec) {
			meaningful = true
		}
	}
	if !meaningful {
		return
	}
	b.armDebounce()
}

// structuralNoise reports whether a record is an attribute change on the
// block's own composition nodes rather than inside tool content.
func (b *Block) structuralNoise(rec dom.Record) bool {
	if rec.Type != dom.RecordAttributes {
		return false
	}
	return rec.Target == b.holder || rec.Target == b.content
}

// armDebounce starts the quiet-period timer or pushes it out again.
// The block is quiescent when no timer is pending; the first mutation after
// quiescence arms it, later mutations inside the window reset it, and the
// handler firing returns the block to quiescence.
func (b *Block) armDebounce() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Reset(b.debounce)
		return
	}
	b.timer = time.AfterFunc(b.debounce, b.mutationsSettled)
}

// mutationsSettled runs once per quiet window: drop the input cache,
// re-derive the current input from live focus, let the tool react, then
// tell subscribers.
func (b *Block) mutationsSettled() {
	b.mu.Lock()
	b.timer = nil
	b.cachedInputs = nil
	b.mu.Unlock()

	b.updateCurrentInput()
	b.Call(tool.MethodUpdated, nil)
	b.emitter.Emit(EventDidMutated, b)
}

// DispatchChange reports a content change the mutation observer cannot see,
// entering the same debounced notification pipeline.
func (b *Block) DispatchChange() {
	b.armDebounce()
}
