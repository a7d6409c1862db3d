package dice

import (
	"errors"
	"math/rand"
	"testing"
)

func TestClassifyOrdinary(t *testing.T) {
	tests := []struct {
		face int
		want Category
	}{
		{1, CategoryFailure},
		{5, CategoryFailure},
		{6, CategorySuccess},
		{9, CategorySuccess},
		{10, CategoryCriticalSuccess},
	}

	for _, tt := range tests {
		if got := ClassifyOrdinary(tt.face); got != tt.want {
			t.Errorf("ClassifyOrdinary(%d) = %s, want %s", tt.face, got, tt.want)
		}
	}
}

func TestClassifyModifier(t *testing.T) {
	tests := []struct {
		name    string
		face    int
		variant Variant
		want    Category
	}{
		{"hunger one is a plain failure", 1, VariantHunger, CategoryFailure},
		{"rage one is a plain failure", 1, VariantRage, CategoryFailure},
		{"desperation one is critical", 1, VariantDesperation, CategoryCriticalFailure},
		{"desperation two is a plain failure", 2, VariantDesperation, CategoryFailure},
		{"desperation ten", 10, VariantDesperation, CategoryCriticalSuccess},
		{"hunger seven", 7, VariantHunger, CategorySuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyModifier(tt.face, tt.variant); got != tt.want {
				t.Errorf("ClassifyModifier(%d, %s) = %s, want %s", tt.face, tt.variant, got, tt.want)
			}
		})
	}
}

func TestResolve_OrdinaryRoll(t *testing.T) {
	result, err := Resolve(Faces{Ordinary: []int{10, 10, 7, 3, 2}}, 6, VariantNone)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if result.Ordinary.CriticalSuccesses != 2 {
		t.Errorf("critical successes = %d, want 2", result.Ordinary.CriticalSuccesses)
	}
	if result.Ordinary.Successes != 1 {
		t.Errorf("successes = %d, want 1", result.Ordinary.Successes)
	}
	if result.Ordinary.Failures != 2 {
		t.Errorf("failures = %d, want 2", result.Ordinary.Failures)
	}
	if result.CriticalPairs != 1 {
		t.Errorf("critical pairs = %d, want 1", result.CriticalPairs)
	}
	// one pair of tens is worth four, plus the seven
	if result.TotalSuccesses != 5 {
		t.Errorf("total successes = %d, want 5", result.TotalSuccesses)
	}
	if result.Passed == nil || *result.Passed {
		t.Errorf("passed = %v, want false", result.Passed)
	}
	if result.Flags.CriticalWin {
		t.Error("critical win should not be set on a failed roll")
	}
}

func TestResolve_DesperationRoll(t *testing.T) {
	faces := Faces{Ordinary: []int{8, 6, 2}, Modifier: []int{1, 10}}
	result, err := Resolve(faces, 3, VariantDesperation)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if result.Ordinary.Successes != 2 || result.Ordinary.Failures != 1 {
		t.Errorf("ordinary tally = %+v, want 2 successes and 1 failure", result.Ordinary)
	}
	if result.Modifier.CriticalFailures != 1 || result.Modifier.CriticalSuccesses != 1 {
		t.Errorf("modifier tally = %+v, want 1 critical failure and 1 critical success", result.Modifier)
	}
	if result.CriticalPairs != 0 {
		t.Errorf("critical pairs = %d, want 0", result.CriticalPairs)
	}
	if result.TotalSuccesses != 3 {
		t.Errorf("total successes = %d, want 3", result.TotalSuccesses)
	}
	if !result.Succeeded() {
		t.Error("expected the roll to pass")
	}
	if !result.Flags.DesperationSuccess {
		t.Error("expected desperation success flag")
	}
	if result.Flags.DespairFailure || result.Flags.PossibleDespair {
		t.Errorf("unexpected flags: %+v", result.Flags)
	}
}

func TestResolve_DesperationFlags(t *testing.T) {
	tests := []struct {
		name       string
		faces      Faces
		difficulty int
		want       Flags
	}{
		{
			name:       "failed roll with a desperation one",
			faces:      Faces{Ordinary: []int{2, 3}, Modifier: []int{1}},
			difficulty: 2,
			want:       Flags{DespairFailure: true},
		},
		{
			name:       "open roll with a desperation one",
			faces:      Faces{Ordinary: []int{8}, Modifier: []int{1}},
			difficulty: 0,
			want:       Flags{PossibleDespair: true},
		},
		{
			name:       "passed critical without ones",
			faces:      Faces{Ordinary: []int{10}, Modifier: []int{10}},
			difficulty: 4,
			want:       Flags{CriticalWin: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Resolve(tt.faces, tt.difficulty, VariantDesperation)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if result.Flags != tt.want {
				t.Errorf("flags = %+v, want %+v", result.Flags, tt.want)
			}
		})
	}
}

func TestResolve_HungerMessyCritical(t *testing.T) {
	result, err := Resolve(Faces{Ordinary: []int{10, 4}, Modifier: []int{10}}, 3, VariantHunger)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result.TotalSuccesses != 4 {
		t.Errorf("total successes = %d, want 4", result.TotalSuccesses)
	}
	if !result.Flags.CriticalWin || !result.Flags.MessyCritical {
		t.Errorf("flags = %+v, want critical win and messy critical", result.Flags)
	}

	clean, err := Resolve(Faces{Ordinary: []int{10, 10}, Modifier: []int{3}}, 3, VariantHunger)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if clean.Flags.MessyCritical {
		t.Error("a critical without hunger tens should not be messy")
	}
}

func TestResolve_RageSurfacesCriticalCount(t *testing.T) {
	result, err := Resolve(Faces{Ordinary: []int{6}, Modifier: []int{10, 10, 10}}, 0, VariantRage)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result.Modifier.CriticalSuccesses != 3 {
		t.Errorf("rage criticals = %d, want 3", result.Modifier.CriticalSuccesses)
	}
	if result.Passed != nil {
		t.Errorf("passed = %v, want nil for an open roll", *result.Passed)
	}
	if result.Flags.CriticalWin {
		t.Error("open rolls never report a critical win")
	}
}

func TestResolve_NoneIgnoresModifierDice(t *testing.T) {
	result, err := Resolve(Faces{Ordinary: []int{7}, Modifier: []int{10, 10}}, 0, VariantNone)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result.Modifier != (Tally{}) {
		t.Errorf("modifier tally = %+v, want empty", result.Modifier)
	}
	if len(result.Dice) != 1 {
		t.Errorf("dice = %d, want 1", len(result.Dice))
	}
	if result.TotalSuccesses != 1 {
		t.Errorf("total successes = %d, want 1", result.TotalSuccesses)
	}
}

func TestResolve_InvalidArguments(t *testing.T) {
	tests := []struct {
		name       string
		faces      Faces
		difficulty int
		variant    Variant
	}{
		{"face zero", Faces{Ordinary: []int{0}}, 0, VariantNone},
		{"face eleven", Faces{Modifier: []int{11}}, 0, VariantHunger},
		{"negative difficulty", Faces{}, -1, VariantNone},
		{"unknown variant", Faces{}, 0, Variant("chaos")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.faces, tt.difficulty, tt.variant)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Resolve() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestResolve_TotalMatchesPairingFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	variants := []Variant{VariantNone, VariantHunger, VariantDesperation, VariantRage}

	for i := 0; i < 2000; i++ {
		v := variants[i%len(variants)]
		faces := Faces{
			Ordinary: randomFaces(rng, rng.Intn(12)),
			Modifier: randomFaces(rng, rng.Intn(6)),
		}

		result, err := Resolve(faces, rng.Intn(8), v)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		critOrd := countFaces(faces.Ordinary, 10)
		plainOrd := countRange(faces.Ordinary, 6, 9)
		var critMod, plainMod int
		if v != VariantNone {
			critMod = countFaces(faces.Modifier, 10)
			plainMod = countRange(faces.Modifier, 6, 9)
		}
		want := 2*((critOrd+critMod)/2) + plainOrd + plainMod + critOrd + critMod

		if result.TotalSuccesses != want {
			t.Fatalf("faces %+v (%s): total = %d, want %d", faces, v, result.TotalSuccesses, want)
		}
	}
}

func randomFaces(rng *rand.Rand, n int) []int {
	faces := make([]int, n)
	for i := range faces {
		faces[i] = rng.Intn(Sides) + 1
	}
	return faces
}

func countFaces(faces []int, face int) int {
	return countRange(faces, face, face)
}

func countRange(faces []int, lo, hi int) int {
	n := 0
	for _, f := range faces {
		if f >= lo && f <= hi {
			n++
		}
	}
	return n
}
