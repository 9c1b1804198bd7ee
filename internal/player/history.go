package player

import "arenafps/internal/geom"

// HistoryCapacity is the ring's fixed slot count. At 60 Hz this covers ~5s
// of past positions; lag-compensated shots older than that clamp to the
// oldest sample rather than extrapolating.
const HistoryCapacity = 300

// History is the per-player circular buffer of timestamped positions used
// for lag-compensated hit validation. It is a fixed-capacity ring: Write
// never allocates past construction.
type History struct {
	x, y, z [HistoryCapacity]float32
	t       [HistoryCapacity]float64
	head    int
	size    int
}

// Clear resets the ring to empty. Called on spawn.
func (h *History) Clear() {
	h.head = 0
	h.size = 0
}

// Write appends a sample at head and advances it, per spec §4.3: called
// once per tick per player, after that player's inputs have been applied.
func (h *History) Write(pos geom.Vec3, timestampMs float64) {
	h.x[h.head] = pos.X
	h.y[h.head] = pos.Y
	h.z[h.head] = pos.Z
	h.t[h.head] = timestampMs
	h.head = (h.head + 1) % HistoryCapacity
	if h.size < HistoryCapacity {
		h.size++
	}
}

func (h *History) at(i int) geom.Vec3 {
	return geom.Vec3{X: h.x[i], Y: h.y[i], Z: h.z[i]}
}

// Query reconstructs the position at timestampMs. It never extrapolates: a
// query newer than the newest sample returns the newest sample, and a query
// older than the oldest returns the oldest. Between those bounds it returns
// the linear interpolation of the adjacent bracketing pair. Reports false
// if the ring is empty (history miss — the shot misses silently per §7).
func (h *History) Query(timestampMs float64) (geom.Vec3, bool) {
	if h.size == 0 {
		return geom.Vec3{}, false
	}

	newest := (h.head - 1 + HistoryCapacity) % HistoryCapacity
	if timestampMs >= h.t[newest] {
		return h.at(newest), true
	}

	curr := newest
	for step := 1; step < h.size; step++ {
		prev := (curr - 1 + HistoryCapacity) % HistoryCapacity
		if h.t[prev] <= timestampMs && timestampMs <= h.t[curr] {
			span := h.t[curr] - h.t[prev]
			if span <= 0 {
				return h.at(curr), true
			}
			frac := float32((timestampMs - h.t[prev]) / span)
			return lerp(h.at(prev), h.at(curr), frac), true
		}
		curr = prev
	}

	// Older than the oldest sample: clamp, don't extrapolate.
	oldest := (h.head - h.size + HistoryCapacity) % HistoryCapacity
	return h.at(oldest), true
}

// Size and Head expose the ring's bookkeeping for invariant tests
// (spec's history-monotonicity and history-bound properties).
func (h *History) Size() int { return h.size }
func (h *History) Head() int { return h.head }

func lerp(a, b geom.Vec3, t float32) geom.Vec3 {
	return geom.Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}
