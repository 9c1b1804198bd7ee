package player

import (
	"testing"

	"arenafps/internal/geom"
)

func TestHistoryQueryEmptyMisses(t *testing.T) {
	var h History
	if _, ok := h.Query(100); ok {
		t.Fatal("expected a miss on an empty ring")
	}
}

func TestHistoryQueryNewestNoExtrapolation(t *testing.T) {
	var h History
	h.Write(geom.Vec3{X: 1}, 100)
	h.Write(geom.Vec3{X: 2}, 200)

	got, ok := h.Query(500)
	if !ok || got.X != 2 {
		t.Fatalf("got %+v ok=%v, want the newest sample (X=2)", got, ok)
	}
}

func TestHistoryQueryOldestNoExtrapolation(t *testing.T) {
	var h History
	h.Write(geom.Vec3{X: 1}, 100)
	h.Write(geom.Vec3{X: 2}, 200)

	got, ok := h.Query(0)
	if !ok || got.X != 1 {
		t.Fatalf("got %+v ok=%v, want the oldest sample (X=1)", got, ok)
	}
}

func TestHistoryQueryInterpolates(t *testing.T) {
	var h History
	h.Write(geom.Vec3{Z: 0}, 0)
	h.Write(geom.Vec3{Z: 10}, 200)

	got, ok := h.Query(100)
	if !ok || got.Z != 5 {
		t.Fatalf("got %+v ok=%v, want Z=5 at the midpoint", got, ok)
	}
}

func TestHistoryBoundedAtCapacity(t *testing.T) {
	var h History
	for i := 0; i < HistoryCapacity+50; i++ {
		h.Write(geom.Vec3{X: float32(i)}, float64(i))
	}
	if h.Size() != HistoryCapacity {
		t.Fatalf("got size=%d, want %d", h.Size(), HistoryCapacity)
	}
	if h.Head() < 0 || h.Head() >= HistoryCapacity {
		t.Fatalf("head=%d out of range", h.Head())
	}
}

func TestHistoryMonotonicBackward(t *testing.T) {
	var h History
	for i := 0; i < HistoryCapacity+10; i++ {
		h.Write(geom.Vec3{}, float64(i))
	}

	prevT := float64(1 << 62)
	idx := (h.Head() - 1 + HistoryCapacity) % HistoryCapacity
	for i := 0; i < h.Size(); i++ {
		if h.t[idx] > prevT {
			t.Fatalf("timestamps not non-increasing walking backward at step %d", i)
		}
		prevT = h.t[idx]
		idx = (idx - 1 + HistoryCapacity) % HistoryCapacity
	}
}
