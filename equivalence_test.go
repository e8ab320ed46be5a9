package pstack

import (
	"testing"
)

// scenarioContents are the expected contents for versions 0..6 after
// push(1), push(2), push(3), pop, pop, push(7).
var scenarioContents = [][]int{
	{},
	{1},
	{1, 2},
	{1, 2, 3},
	{1, 2},
	{1},
	{1, 7},
}

func driveScenario(t *testing.T, h History[int]) {
	t.Helper()
	h.Push(1)
	h.Push(2)
	h.Push(3)
	for _, want := range []int{3, 2} {
		got, err := h.Pop()
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if got != want {
			t.Fatalf("pop returned %d, want %d", got, want)
		}
	}
	h.Push(7)
}

func assertContents(t *testing.T, h History[int], version int, want []int) {
	t.Helper()
	got, err := h.ReadVersion(version)
	if err != nil {
		t.Fatalf("read version %d: %v", version, err)
	}
	if !sameContents(got, want) {
		t.Fatalf("version %d content %v, want %v", version, got, want)
	}
}

func sameContents(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestDesignsAgreeOnScenario(t *testing.T) {
	histories := map[string]History[int]{
		DesignSnapshot:   NewSnapshotStack[int](),
		DesignLog:        NewLogStack[int](),
		DesignReversible: NewReversibleStack[int](),
	}

	for name, h := range histories {
		driveScenario(t, h)
		if h.Version() != len(scenarioContents)-1 {
			t.Fatalf("%s latest version %d, want %d", name, h.Version(), len(scenarioContents)-1)
		}
		for v, want := range scenarioContents {
			assertContents(t, h, v, want)
		}
	}
}

func TestDesignsAgreeOnArbitrarySequence(t *testing.T) {
	type step struct {
		push  bool
		value int
	}
	steps := []step{
		{push: true, value: 4}, {push: true, value: 9}, {push: false},
		{push: true, value: 2}, {push: true, value: 2}, {push: false},
		{push: false}, {push: true, value: 11}, {push: false}, {push: false},
		{push: true, value: 5}, {push: true, value: 6}, {push: true, value: 8},
		{push: false}, {push: true, value: 1},
	}

	snapshot := NewSnapshotStack[int]()
	replay := NewLogStack[int]()
	reversible := NewReversibleStack[int]()
	for _, s := range steps {
		if s.push {
			snapshot.Push(s.value)
			replay.Push(s.value)
			reversible.Push(s.value)
			continue
		}
		a, errA := snapshot.Pop()
		b, errB := replay.Pop()
		c, errC := reversible.Pop()
		if errA != nil || errB != nil || errC != nil {
			t.Fatalf("pop errors: %v %v %v", errA, errB, errC)
		}
		if a != b || b != c {
			t.Fatalf("pop values diverge: %d %d %d", a, b, c)
		}
	}

	if snapshot.Version() != replay.Version() || replay.Version() != reversible.Version() {
		t.Fatalf("versions diverge: %d %d %d", snapshot.Version(), replay.Version(), reversible.Version())
	}
	for v := 0; v <= snapshot.Version(); v++ {
		want, err := snapshot.ReadVersion(v)
		if err != nil {
			t.Fatalf("snapshot read %d: %v", v, err)
		}
		assertContents(t, replay, v, want)
		assertContents(t, reversible, v, want)
	}
	// Descending pass exercises the reversible cursor's backward walk.
	for v := reversible.Version(); v >= 0; v-- {
		want, err := snapshot.ReadVersion(v)
		if err != nil {
			t.Fatalf("snapshot read %d: %v", v, err)
		}
		assertContents(t, reversible, v, want)
	}
}

func TestVersionMonotonicity(t *testing.T) {
	for name, h := range map[string]History[int]{
		DesignSnapshot:   NewSnapshotStack[int](),
		DesignLog:        NewLogStack[int](),
		DesignReversible: NewReversibleStack[int](),
	} {
		if h.Version() != 0 {
			t.Fatalf("%s initial version %d, want 0", name, h.Version())
		}
		h.Push(1)
		if h.Version() != 1 {
			t.Fatalf("%s version after push %d, want 1", name, h.Version())
		}
		if _, err := h.Pop(); err != nil {
			t.Fatalf("%s pop: %v", name, err)
		}
		if h.Version() != 2 {
			t.Fatalf("%s version after pop %d, want 2", name, h.Version())
		}
	}
}
