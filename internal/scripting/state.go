// Package scripting loads tools and tunes implemented as Lua scripts.
//
// A script bundle is a directory with a manifest.json and a main Lua file.
// The script defines plain global functions: render/save for the content
// contract and any of the lifecycle hook names (rendered, updated, moved,
// removed, onPaste, appendCallback) it cares about. Hooks the script does
// not define are simply never called.
package scripting

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrStateClosed is returned when calling into a closed state.
var ErrStateClosed = errors.New("scripting: state closed")

// State wraps a sandboxed Lua interpreter for one script instance.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes calls
// from Go. Script execution itself is single-threaded.
type State struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// NewState creates a Lua state with only safe standard libraries opened.
// io, os, debug and package stay closed: scripts get no file system or
// process access.
func NewState() *State {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	return &State{L: L}
}

// Close releases the interpreter. Safe to call more than once.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

// DoFile executes a Lua file in the state.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return s.L.DoFile(path)
}

// DoString executes Lua source in the state.
func (s *State) DoString(src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return s.L.DoString(src)
}

// HasFunction reports whether the script defines a global function name.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	_, ok := s.L.GetGlobal(name).(*lua.LFunction)
	return ok
}

// SetGlobal installs a value under a global name.
func (s *State) SetGlobal(name string, v lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.SetGlobal(name, v)
}

// Call invokes a global function with the given arguments and returns its
// first result. Script errors come back as Go errors, never panics.
func (s *State) Call(fn string, args ...lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil, ErrStateClosed
	}
	f, ok := s.L.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return lua.LNil, fmt.Errorf("scripting: no function %q", fn)
	}
	if err := s.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, fmt.Errorf("scripting: call %q: %w", fn, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}
