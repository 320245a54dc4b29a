package block

import (
	"slices"

	"github.com/frysweet/blockforge/internal/dom"
)

// Inputs returns the focusable input elements inside the block's container,
// in document order. The list is cached and recomputed lazily after a
// mutation invalidates it.
func (b *Block) Inputs() []*dom.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.inputsLocked())
}

// inputsLocked returns the cached input list, recomputing it from the live
// tree when empty. Callers hold b.mu.
func (b *Block) inputsLocked() []*dom.Element {
	if len(b.cachedInputs) == 0 {
		b.cachedInputs = dom.FindInputs(b.holder)
		b.clampIndexLocked()
	}
	return b.cachedInputs
}

func (b *Block) clampIndexLocked() {
	n := len(b.cachedInputs)
	if n == 0 {
		b.currentInputIndex = 0
		return
	}
	if b.currentInputIndex < 0 {
		b.currentInputIndex = 0
	}
	if b.currentInputIndex >= n {
		b.currentInputIndex = n - 1
	}
}

// InputsCount returns the number of focusable inputs in the block.
func (b *Block) InputsCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inputsLocked())
}

// CurrentInput returns the input the block considers current, or nil when
// the block has no inputs.
func (b *Block) CurrentInput() *dom.Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	inputs := b.inputsLocked()
	if len(inputs) == 0 {
		return nil
	}
	return inputs[b.currentInputIndex]
}

// CurrentInputIndex returns the index of the current input.
func (b *Block) CurrentInputIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentInputIndex
}

// SetCurrentInputIndex moves the current input to i, clamped to the valid
// range, and focuses it. A block without inputs ignores the call.
func (b *Block) SetCurrentInputIndex(i int) {
	b.mu.Lock()
	inputs := b.inputsLocked()
	if len(inputs) == 0 {
		b.mu.Unlock()
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(inputs) {
		i = len(inputs) - 1
	}
	b.currentInputIndex = i
	el := inputs[i]
	b.mu.Unlock()

	el.Focus()
}

// NextInput moves to the following input. It reports false, without moving,
// when the current input is already the last one: there is no wraparound.
func (b *Block) NextInput() bool {
	return b.moveInput(1)
}

// PreviousInput moves to the preceding input. No wraparound at the start.
func (b *Block) PreviousInput() bool {
	return b.moveInput(-1)
}

func (b *Block) moveInput(delta int) bool {
	b.mu.Lock()
	inputs := b.inputsLocked()
	next := b.currentInputIndex + delta
	if next < 0 || next >= len(inputs) {
		b.mu.Unlock()
		return false
	}
	b.currentInputIndex = next
	el := inputs[next]
	b.mu.Unlock()

	el.Focus()
	return true
}

// updateCurrentInput re-derives the current input index from the element
// that currently holds focus. When no cached input holds focus the index
// falls back to 0, the first input.
func (b *Block) updateCurrentInput() {
	focused := dom.FocusedWithin(b.holder)

	b.mu.Lock()
	defer b.mu.Unlock()
	inputs := b.inputsLocked()
	idx := 0
	if focused != nil {
		if i := slices.Index(inputs, focused); i >= 0 {
			idx = i
		}
	}
	b.currentInputIndex = idx
}

// UpdateCurrentInput recomputes the current input from live focus. The
// editor calls this after an explicit focus change it performed itself.
func (b *Block) UpdateCurrentInput() {
	b.updateCurrentInput()
}
