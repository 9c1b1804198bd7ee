package mapgen

import "testing"

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(12345)
	b := Generate(12345)

	if len(a) != ObstacleCount+4 {
		t.Fatalf("got %d obstacles, want %d", len(a), ObstacleCount+4)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("obstacle %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	a := Generate(1)
	b := Generate(2)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("seeds 1 and 2 produced identical obstacle fields")
	}
}

func TestGenerateBoundaryWalls(t *testing.T) {
	obstacles := Generate(0)
	walls := obstacles[ObstacleCount:]

	half := float32(MapSize) / 2
	wantZ := []float32{half, -half, 0, 0}
	wantX := []float32{0, 0, half, -half}

	for i, w := range walls {
		if w.Z != wantZ[i] || w.X != wantX[i] {
			t.Errorf("wall %d = {X:%v Z:%v}, want {X:%v Z:%v}", i, w.X, w.Z, wantX[i], wantZ[i])
		}
	}
}
