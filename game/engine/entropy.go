package engine

import (
	"golang.org/x/exp/rand"
)

// Entropy is the source of every random draw the rules make.
// Transitions never call ambient randomness.
type Entropy interface {
	// Intn returns a value in [0, n)
	Intn(n int) int
	// Float64 returns a value in [0, 1)
	Float64() float64
}

// SeededEntropy is a PCG-backed Entropy whose position can be saved and restored
type SeededEntropy struct {
	src *rand.PCGSource
	rng *rand.Rand
}

// NewSeededEntropy creates an entropy source from a seed
func NewSeededEntropy(seed uint64) *SeededEntropy {
	src := &rand.PCGSource{}
	src.Seed(seed)
	return &SeededEntropy{src: src, rng: rand.New(src)}
}

// Intn returns a value in [0, n); n <= 0 yields 0
func (e *SeededEntropy) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return e.rng.Intn(n)
}

// Float64 returns a value in [0, 1)
func (e *SeededEntropy) Float64() float64 {
	return e.rng.Float64()
}

// MarshalBinary captures the generator position
func (e *SeededEntropy) MarshalBinary() ([]byte, error) {
	return e.src.MarshalBinary()
}

// UnmarshalBinary restores a position captured by MarshalBinary
func (e *SeededEntropy) UnmarshalBinary(data []byte) error {
	return e.src.UnmarshalBinary(data)
}

// ScriptedEntropy replays fixed sequences. When a sequence runs out, Intn
// yields 0 and Float64 yields 0.999 so probabilistic effects stay quiet.
type ScriptedEntropy struct {
	Ints   []int
	Floats []float64
}

// Intn returns the next scripted int reduced modulo n
func (s *ScriptedEntropy) Intn(n int) int {
	if n <= 0 || len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float
func (s *ScriptedEntropy) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0.999
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

// Dice returns scripted ints that roll the given die faces
func Dice(faces ...int) []int {
	out := make([]int, len(faces))
	for i, f := range faces {
		out[i] = f - 1
	}
	return out
}

// chance reports whether a draw falls under probability p
func chance(r Entropy, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

func rollDie(r Entropy) int {
	return r.Intn(DiceSides) + 1
}
