package block

import (
	"go.uber.org/zap"

	"github.com/frysweet/blockforge/internal/tool"
)

// Call dispatches a lifecycle hook into the tool instance.
//
// A tool that does not implement the hook makes the call a silent no-op.
// Errors and panics raised inside the hook never propagate: they become a
// logged diagnostic carrying the hook name, and the block stays usable.
// Dispatching the deprecated appendCallback hook logs a one-time warning
// per block and then proceeds normally.
func (b *Block) Call(m tool.Method, params any) {
	if !m.Valid() {
		b.logger.Debug("ignoring call to unknown hook",
			zap.String("block", b.id),
			zap.String("method", string(m)))
		return
	}
	if m.Deprecated() {
		b.deprecatedOnce.Do(func() {
			b.logger.Warn("hook is deprecated, implement rendered instead",
				zap.String("block", b.id),
				zap.String("method", string(m)))
		})
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("tool hook panicked",
				zap.String("block", b.id),
				zap.String("tool", b.name),
				zap.String("method", string(m)),
				zap.Any("panic", r))
		}
	}()

	// Scripted tools route every hook through the dynamic handler.
	if h, ok := b.tool.(tool.HookHandler); ok {
		if _, err := h.Hook(m, params); err != nil {
			b.logger.Error("tool hook failed",
				zap.String("block", b.id),
				zap.String("tool", b.name),
				zap.String("method", string(m)),
				zap.Error(err))
		}
		return
	}

	switch m {
	case tool.MethodAppendCallback:
		if h, ok := b.tool.(tool.AppendCallbackHook); ok {
			h.AppendCallback()
		}
	case tool.MethodRendered:
		if h, ok := b.tool.(tool.RenderedHook); ok {
			h.Rendered()
		}
	case tool.MethodMoved:
		if h, ok := b.tool.(tool.MovedHook); ok {
			h.Moved(params)
		}
	case tool.MethodUpdated:
		if h, ok := b.tool.(tool.UpdatedHook); ok {
			h.Updated()
		}
	case tool.MethodRemoved:
		if h, ok := b.tool.(tool.RemovedHook); ok {
			h.Removed()
		}
	case tool.MethodOnPaste:
		if h, ok := b.tool.(tool.PasteHook); ok {
			h.OnPaste(params)
		}
	}
}
