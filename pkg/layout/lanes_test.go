package layout

import (
	"slices"
	"testing"
)

func TestArenaReusesSmallestFirst(t *testing.T) {
	var a arena
	for want := range 4 {
		if got := a.alloc(); got != want {
			t.Fatalf("alloc() = %d, want %d", got, want)
		}
	}
	a.release(2)
	a.release(0)
	for _, want := range []int{0, 2, 4} {
		if got := a.alloc(); got != want {
			t.Errorf("alloc() = %d, want %d", got, want)
		}
	}
}

func TestArenaDoubleReleasePanics(t *testing.T) {
	var a arena
	a.alloc()
	a.release(0)
	defer func() {
		if _, ok := recover().(*InvariantError); !ok {
			t.Error("second release did not panic with *InvariantError")
		}
	}()
	a.release(0)
}

func TestLaneTable(t *testing.T) {
	lt := newLaneTable()
	a := lt.open("x", -1)
	b := lt.open("y", -1)
	c := lt.open("z", 1)

	if got := lt.tids(); !slices.Equal(got, []int{a, c, b}) {
		t.Fatalf("tids() = %v, want [%d %d %d]", got, a, c, b)
	}

	lt.retarget(b, "x")
	if got := lt.awaiting("x"); !slices.Equal(got, []int{a, b}) {
		t.Errorf("awaiting(x) = %v, want registration order [%d %d]", got, a, b)
	}

	lt.settle("x")
	if got := lt.awaiting("x"); len(got) != 0 {
		t.Errorf("awaiting(x) after settle = %v", got)
	}

	lt.remove(c)
	if lt.column(c) != -1 {
		t.Errorf("column(%d) = %d after remove", c, lt.column(c))
	}
	ths := lt.threads(func(l lane) bool { return l.tid == b })
	if want := []Thread{{Tid: a}, {Tid: b, DepOnActive: true}}; !slices.Equal(ths, want) {
		t.Errorf("threads() = %v, want %v", ths, want)
	}
}
