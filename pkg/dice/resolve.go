package dice

import "fmt"

// ClassifyOrdinary classifies a face rolled on an ordinary die.
func ClassifyOrdinary(face int) Category {
	switch {
	case face == Sides:
		return CategoryCriticalSuccess
	case face >= 6:
		return CategorySuccess
	default:
		return CategoryFailure
	}
}

// ClassifyModifier classifies a face rolled on a modifier die for the variant.
func ClassifyModifier(face int, v Variant) Category {
	if v == VariantDesperation && face == 1 {
		return CategoryCriticalFailure
	}
	return ClassifyOrdinary(face)
}

// TotalSuccesses applies the pairing rule: every two criticals, from either
// die kind, award two bonus successes on top of counting as one success each.
func TotalSuccesses(ordinary, modifier Tally) int {
	crits := ordinary.CriticalSuccesses + modifier.CriticalSuccesses
	return 2*(crits/2) + ordinary.Successes + modifier.Successes + crits
}

// Resolve classifies the given faces and derives totals and narrative flags.
//
// Modifier faces are ignored for VariantNone. The resolver never rejects a
// modifier count larger than the ordinary count; callers enforce that when
// their game line requires it.
func Resolve(faces Faces, difficulty int, v Variant) (Result, error) {
	v, err := ParseVariant(string(v))
	if err != nil {
		return Result{}, err
	}
	if difficulty < 0 {
		return Result{}, fmt.Errorf("%w: difficulty %d is negative", ErrInvalidArgument, difficulty)
	}

	modifier := faces.Modifier
	if v == VariantNone {
		modifier = nil
	}

	result := Result{
		Variant:    v,
		Difficulty: difficulty,
		Dice:       make([]DieOutcome, 0, len(faces.Ordinary)+len(modifier)),
	}

	for _, face := range faces.Ordinary {
		if err := checkFace(face); err != nil {
			return Result{}, err
		}
		c := ClassifyOrdinary(face)
		result.Ordinary.add(c)
		result.Dice = append(result.Dice, DieOutcome{Face: face, Kind: KindOrdinary, Category: c})
	}
	for _, face := range modifier {
		if err := checkFace(face); err != nil {
			return Result{}, err
		}
		c := ClassifyModifier(face, v)
		result.Modifier.add(c)
		result.Dice = append(result.Dice, DieOutcome{Face: face, Kind: KindModifier, Category: c})
	}

	result.CriticalPairs = result.Criticals() / 2
	result.TotalSuccesses = TotalSuccesses(result.Ordinary, result.Modifier)

	if difficulty > 0 {
		passed := result.TotalSuccesses >= difficulty
		result.Passed = &passed
	}

	result.Flags = deriveFlags(&result)
	return result, nil
}

func deriveFlags(r *Result) Flags {
	var f Flags
	passed := r.Succeeded()

	f.CriticalWin = r.CriticalPairs > 0 && passed

	switch r.Variant {
	case VariantHunger:
		f.MessyCritical = f.CriticalWin && r.Modifier.CriticalSuccesses > 0
	case VariantDesperation:
		if r.Modifier.CriticalFailures > 0 {
			switch {
			case r.Difficulty == 0:
				f.PossibleDespair = true
			case passed:
				f.DesperationSuccess = true
			default:
				f.DespairFailure = true
			}
		}
	}
	return f
}

func checkFace(face int) error {
	if face < 1 || face > Sides {
		return fmt.Errorf("%w: face %d outside 1..%d", ErrInvalidArgument, face, Sides)
	}
	return nil
}
