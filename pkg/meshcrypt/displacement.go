package meshcrypt

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/Faultbox/meshveil/pkg/math"
)

// pcgStream selects the PCG increment for a given seed.
const pcgStream = 0x9e3779b97f4a7c15

// Seed derives the displacement seed from an encryption code.
// The hash is xxHash64 over the UTF-8 bytes, so seeds are stable across platforms.
func Seed(code string) uint64 {
	return xxhash.Sum64String(code)
}

// Displacer produces per-vertex offsets from a seeded stream.
// Offsets must be drawn in vertex order; the stream is stateful.
type Displacer struct {
	rng       *rand.Rand
	magnitude float64
}

// NewDisplacer creates a displacer for the given code and magnitude.
func NewDisplacer(code string, magnitude float32) *Displacer {
	seed := Seed(code)
	return &Displacer{
		rng:       rand.New(rand.NewPCG(seed, seed^pcgStream)),
		magnitude: float64(magnitude),
	}
}

// Next returns the offset for the next vertex. Each component lies in
// [-magnitude/2, +magnitude/2).
func (d *Displacer) Next() math.Vec3 {
	x := d.sample()
	y := d.sample()
	z := d.sample()
	return math.Vec3{X: x, Y: y, Z: z}
}

func (d *Displacer) sample() float32 {
	return float32(d.rng.Float64()*d.magnitude - d.magnitude*0.5)
}

// GenerateOffsets returns count offsets for the given code and magnitude.
func GenerateOffsets(code string, magnitude float32, count int) []math.Vec3 {
	if count <= 0 {
		return []math.Vec3{}
	}
	d := NewDisplacer(code, magnitude)
	offsets := make([]math.Vec3, count)
	for i := range offsets {
		offsets[i] = d.Next()
	}
	return offsets
}

// Displace returns a new position buffer with offsets[i] added to positions[i].
func Displace(positions, offsets []math.Vec3) ([]math.Vec3, error) {
	if len(positions) != len(offsets) {
		return nil, ErrVertexCountMismatch
	}
	out := make([]math.Vec3, len(positions))
	for i, p := range positions {
		out[i] = p.Add(offsets[i])
	}
	return out, nil
}
