package env

import (
	"testing"

	"quill/value"
)

func TestExtendAppendsBindingsInOrder(t *testing.T) {
	base := value.Environment{{Name: "outer", Loc: 0}}
	out := Extend(base, []string{"a", "b"}, []value.Location{1, 2})

	if len(out) != 3 {
		t.Fatalf("got %d bindings, want 3", len(out))
	}
	if loc, ok := out.Lookup("a"); !ok || loc != 1 {
		t.Errorf("a = (%d, %v), want (1, true)", loc, ok)
	}
	if loc, ok := out.Lookup("b"); !ok || loc != 2 {
		t.Errorf("b = (%d, %v), want (2, true)", loc, ok)
	}
}

func TestShrinkUndoesAMatchingExtend(t *testing.T) {
	base := value.Environment{{Name: "outer", Loc: 0}}
	extended := Extend(base, []string{"a", "b"}, []value.Location{1, 2})
	back := Shrink(extended, 2)

	if len(back) != 1 {
		t.Fatalf("got %d bindings after shrink, want 1", len(back))
	}
	if _, ok := back.Lookup("a"); ok {
		t.Error("a should no longer be visible after Shrink")
	}
	if loc, ok := back.Lookup("outer"); !ok || loc != 0 {
		t.Errorf("outer = (%d, %v), want (0, true)", loc, ok)
	}
}

func TestNewFrameClonesCapturedEnvironment(t *testing.T) {
	captured := value.Environment{{Name: "x", Loc: 5}}
	frame := NewFrame(captured, []string{"v"}, []value.Location{9})

	if loc, ok := frame.Lookup("x"); !ok || loc != 5 {
		t.Errorf("captured binding x = (%d, %v), want (5, true)", loc, ok)
	}
	if loc, ok := frame.Lookup("v"); !ok || loc != 9 {
		t.Errorf("argument binding v = (%d, %v), want (9, true)", loc, ok)
	}

	// Extending the frame must never retroactively affect the
	// environment that was captured at closure-creation time.
	if len(captured) != 1 {
		t.Errorf("NewFrame mutated its captured environment in place, len = %d", len(captured))
	}
}

func TestNewFrameParameterShadowsCapturedNameOfSameName(t *testing.T) {
	captured := value.Environment{{Name: "v", Loc: 1}}
	frame := NewFrame(captured, []string{"v"}, []value.Location{2})

	loc, ok := frame.Lookup("v")
	if !ok || loc != 2 {
		t.Errorf("parameter binding should shadow the captured one: got (%d, %v), want (2, true)", loc, ok)
	}
}
