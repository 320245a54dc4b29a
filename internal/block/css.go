package block

// Structural class names other editor components rely on for styling and
// selection. These are part of the visual contract and must stay stable.
const (
	// ClassWrapper marks the block's outermost container.
	ClassWrapper = "bf-block"
	// ClassContent marks the node holding the tool's rendered content.
	ClassContent = "bf-block__content"
	// ClassFocused marks a block holding editor focus.
	ClassFocused = "bf-block--focused"
	// ClassSelected marks a block included in the current selection.
	ClassSelected = "bf-block--selected"
	// ClassDropTarget marks a block hovered during drag and drop.
	ClassDropTarget = "bf-block--drop-target"
)

// SetFocused toggles the focused structural marker on the wrapper.
func (b *Block) SetFocused(focused bool) {
	b.holder.ToggleClass(ClassFocused, focused)
}

// Focused reports whether the focused marker is set.
func (b *Block) Focused() bool {
	return b.holder.HasClass(ClassFocused)
}

// SetSelected toggles the selected structural marker on the wrapper.
func (b *Block) SetSelected(selected bool) {
	b.holder.ToggleClass(ClassSelected, selected)
}

// Selected reports whether the selected marker is set.
func (b *Block) Selected() bool {
	return b.holder.HasClass(ClassSelected)
}

// SetDropTarget toggles the drop-target structural marker on the wrapper.
func (b *Block) SetDropTarget(target bool) {
	b.holder.ToggleClass(ClassDropTarget, target)
}

// DropTarget reports whether the drop-target marker is set.
func (b *Block) DropTarget() bool {
	return b.holder.HasClass(ClassDropTarget)
}
