package chat

import (
	"math/rand/v2"
)

// DefaultColors is the seed set of identity colors.
var DefaultColors = []string{"red", "green", "blue", "magenta", "purple", "plum", "orange"}

// ColorPool hands out identity colors so that no two live sessions hold the
// same one. Colors are consumed front to back; released colors go to the back.
//
// A ColorPool is not safe for concurrent use. The Hub owning it serializes
// every call.
type ColorPool struct {
	available []string
	held      map[string]struct{}
}

// NewColorPool builds a pool from colors, dropping empty and duplicate labels.
// When rng is non-nil the order is shuffled once, here, and never again.
func NewColorPool(colors []string, rng *rand.Rand) *ColorPool {
	seen := make(map[string]struct{}, len(colors))
	available := make([]string, 0, len(colors))
	for _, c := range colors {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		available = append(available, c)
	}

	if rng != nil {
		rng.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})
	}

	return &ColorPool{
		available: available,
		held:      make(map[string]struct{}, len(available)),
	}
}

// NewShuffledColorPool returns a pool of colors in a freshly seeded random order.
func NewShuffledColorPool(colors []string) *ColorPool {
	return NewColorPool(colors, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// Allocate removes the next available color and marks it held.
// It reports false when the pool is exhausted.
func (p *ColorPool) Allocate() (string, bool) {
	if len(p.available) == 0 {
		return "", false
	}
	color := p.available[0]
	p.available = p.available[1:]
	p.held[color] = struct{}{}
	return color, true
}

// Release returns a held color to the back of the pool. Releasing a color
// that is not currently held is a no-op and reports false.
func (p *ColorPool) Release(color string) bool {
	if _, ok := p.held[color]; !ok {
		return false
	}
	delete(p.held, color)
	p.available = append(p.available, color)
	return true
}

// Available returns how many colors can still be allocated.
func (p *ColorPool) Available() int {
	return len(p.available)
}

// Held returns how many colors are currently assigned to sessions.
func (p *ColorPool) Held() int {
	return len(p.held)
}

// Size is the total number of colors the pool manages.
func (p *ColorPool) Size() int {
	return len(p.available) + len(p.held)
}
