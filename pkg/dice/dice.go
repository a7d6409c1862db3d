// Package dice resolves ten-sided dice pools where a subset of the pool is
// rolled with special "modifier" dice (hunger, desperation, rage).
//
// Resolution is defined over given face sequences so it can be tested without
// randomness; Roller draws faces and then delegates to Resolve.
package dice

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned for dice counts outside 0..MaxPool, faces
// outside 1..10, negative difficulties and unknown variants.
var ErrInvalidArgument = errors.New("invalid argument")

// Sides is the number of faces on every die in a pool.
const Sides = 10

// MaxPool is the largest ordinary or modifier dice count a pool may hold.
const MaxPool = 50

// Variant selects how modifier dice are classified and which narrative flags
// a result carries.
type Variant string

const (
	// VariantNone rolls ordinary dice only; modifier counts are forced to 0.
	VariantNone Variant = "none"
	// VariantHunger classifies modifier dice exactly like ordinary dice.
	VariantHunger Variant = "hunger"
	// VariantDesperation adds a critical-failure category on a modifier 1.
	VariantDesperation Variant = "desperation"
	// VariantRage classifies like hunger; the caller interprets the raw count
	// of critical modifier dice against its own thresholds.
	VariantRage Variant = "rage"
)

// ParseVariant converts a string to a Variant. The empty string is VariantNone.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantNone:
		return VariantNone, nil
	case VariantHunger:
		return VariantHunger, nil
	case VariantDesperation:
		return VariantDesperation, nil
	case VariantRage:
		return VariantRage, nil
	default:
		return "", fmt.Errorf("%w: unknown dice variant %q", ErrInvalidArgument, s)
	}
}

// Kind identifies which part of the pool a die belongs to.
type Kind string

const (
	KindOrdinary Kind = "ordinary"
	KindModifier Kind = "modifier"
)

// Category is the classified outcome of a single die.
type Category string

const (
	CategorySuccess         Category = "success"
	CategoryCriticalSuccess Category = "critical_success"
	CategoryFailure         Category = "failure"
	CategoryCriticalFailure Category = "critical_failure"
)

// DieOutcome is one rolled die.
type DieOutcome struct {
	Face     int      `json:"face"`
	Kind     Kind     `json:"kind"`
	Category Category `json:"category"`
}

// Tally counts outcomes per category for one die kind.
type Tally struct {
	Successes         int `json:"successes"`
	CriticalSuccesses int `json:"critical_successes"`
	Failures          int `json:"failures"`
	CriticalFailures  int `json:"critical_failures"`
}

func (t *Tally) add(c Category) {
	switch c {
	case CategorySuccess:
		t.Successes++
	case CategoryCriticalSuccess:
		t.CriticalSuccesses++
	case CategoryFailure:
		t.Failures++
	case CategoryCriticalFailure:
		t.CriticalFailures++
	}
}

// Pool is the number of dice to draw of each kind plus the difficulty.
// A difficulty of 0 means the pool is open-ended and has no pass/fail.
type Pool struct {
	Ordinary   int `json:"ordinary"`
	Modifier   int `json:"modifier"`
	Difficulty int `json:"difficulty"`
}

// Validate rejects negative counts and difficulties.
func (p Pool) Validate() error {
	if p.Ordinary < 0 {
		return fmt.Errorf("%w: ordinary dice count %d is negative", ErrInvalidArgument, p.Ordinary)
	}
	if p.Modifier < 0 {
		return fmt.Errorf("%w: modifier dice count %d is negative", ErrInvalidArgument, p.Modifier)
	}
	if p.Ordinary > MaxPool || p.Modifier > MaxPool {
		return fmt.Errorf("%w: pool of %d+%d dice exceeds %d", ErrInvalidArgument, p.Ordinary, p.Modifier, MaxPool)
	}
	if p.Difficulty < 0 {
		return fmt.Errorf("%w: difficulty %d is negative", ErrInvalidArgument, p.Difficulty)
	}
	return nil
}

// Faces holds already-rolled face values for each die kind.
type Faces struct {
	Ordinary []int `json:"ordinary"`
	Modifier []int `json:"modifier"`
}

// Flags are the narrative outcomes of a roll.
type Flags struct {
	// CriticalWin is set when at least one critical pair formed and the roll passed.
	CriticalWin bool `json:"critical_win,omitempty"`
	// MessyCritical is a critical win with a critical on a hunger die.
	MessyCritical bool `json:"messy_critical,omitempty"`
	// DesperationSuccess is a passed roll with a desperation 1.
	DesperationSuccess bool `json:"desperation_success,omitempty"`
	// DespairFailure is a failed roll against a difficulty with a desperation 1.
	DespairFailure bool `json:"despair_failure,omitempty"`
	// PossibleDespair is a desperation 1 on an open-ended roll.
	PossibleDespair bool `json:"possible_despair,omitempty"`
}

// Result is the structured outcome of a resolved pool.
type Result struct {
	Variant        Variant      `json:"variant"`
	Difficulty     int          `json:"difficulty"`
	Dice           []DieOutcome `json:"dice"`
	Ordinary       Tally        `json:"ordinary"`
	Modifier       Tally        `json:"modifier"`
	CriticalPairs  int          `json:"critical_pairs"`
	TotalSuccesses int          `json:"total_successes"`
	// Passed is nil when Difficulty is 0.
	Passed *bool `json:"passed"`
	Flags  Flags `json:"flags"`
}

// Succeeded reports whether the roll met a difficulty. Open-ended rolls never
// succeed in this sense.
func (r *Result) Succeeded() bool {
	return r.Passed != nil && *r.Passed
}

// Criticals is the number of critical successes across both die kinds.
func (r *Result) Criticals() int {
	return r.Ordinary.CriticalSuccesses + r.Modifier.CriticalSuccesses
}
