package scripting

import (
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestStateCall(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if !st.HasFunction("add") {
		t.Fatal("add should exist")
	}
	if st.HasFunction("missing") {
		t.Fatal("missing should not exist")
	}

	ret, err := st.Call("add", lua.LNumber(2), lua.LNumber(3))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if n, ok := ret.(lua.LNumber); !ok || n != 5 {
		t.Fatalf("result = %v, want 5", ret)
	}
}

func TestStateCallScriptError(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString(`function boom() error("nope") end`); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Call("boom"); err == nil {
		t.Fatal("script error should surface as Go error")
	}
}

func TestStateCallMissingFunction(t *testing.T) {
	st := NewState()
	defer st.Close()

	if _, err := st.Call("nothing"); err == nil {
		t.Fatal("calling a missing function should fail")
	}
}

func TestStateSandbox(t *testing.T) {
	st := NewState()
	defer st.Close()

	// io and os must not be available to scripts.
	if err := st.DoString(`if io ~= nil or os ~= nil then error("unsandboxed") end`); err != nil {
		t.Fatalf("sandbox check failed: %v", err)
	}
}

func TestStateClosed(t *testing.T) {
	st := NewState()
	st.Close()
	st.Close() // idempotent

	if err := st.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Fatalf("err = %v, want ErrStateClosed", err)
	}
	if _, err := st.Call("f"); !errors.Is(err, ErrStateClosed) {
		t.Fatalf("err = %v, want ErrStateClosed", err)
	}
	if st.HasFunction("f") {
		t.Fatal("closed state should report no functions")
	}
}
