package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Source is the randomness provider for dice rolls.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Roller draws faces from a Source and resolves them.
// It is safe for concurrent use.
type Roller struct {
	mu  sync.Mutex
	src Source
}

// NewRoller returns a Roller over a math/rand generator seeded with seed.
// The same seed always yields the same sequence of results.
func NewRoller(seed int64) *Roller {
	return &Roller{src: rand.New(rand.NewSource(seed))}
}

// NewRollerFromSource wraps an existing Source.
func NewRollerFromSource(src Source) *Roller {
	return &Roller{src: src}
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Draw rolls the pool's dice without classifying them.
func (r *Roller) Draw(p Pool, v Variant) (Faces, error) {
	if err := p.Validate(); err != nil {
		return Faces{}, err
	}
	if v == VariantNone {
		p.Modifier = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	faces := Faces{
		Ordinary: make([]int, p.Ordinary),
		Modifier: make([]int, p.Modifier),
	}
	for i := range faces.Ordinary {
		faces.Ordinary[i] = r.src.Intn(Sides) + 1
	}
	for i := range faces.Modifier {
		faces.Modifier[i] = r.src.Intn(Sides) + 1
	}
	return faces, nil
}

// Roll draws the pool and resolves it.
func (r *Roller) Roll(p Pool, v Variant) (Result, error) {
	v, err := ParseVariant(string(v))
	if err != nil {
		return Result{}, err
	}
	faces, err := r.Draw(p, v)
	if err != nil {
		return Result{}, err
	}
	return Resolve(faces, p.Difficulty, v)
}
