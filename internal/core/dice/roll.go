package dice

// RollWithSource rolls a pool of specs with src.
//
// Specs are processed in slice order and Result.Rolls mirrors that order.
// The same source state and the same specs always give the same Result.
//
// # Errors
//
//   - ErrMissingDice when specs is empty.
//   - ErrInvalidDiceSpec when the pool holds more than MaxCount specs, or a
//     spec has Sides outside [1, MaxSides] or Count outside [1, MaxCount].
func RollWithSource(src Source, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}
	if len(specs) > MaxCount {
		return Result{}, ErrInvalidDiceSpec
	}
	for _, spec := range specs {
		if !validSpec(spec.Sides, spec.Count) {
			return Result{}, ErrInvalidDiceSpec
		}
	}

	rolls := make([]Roll, 0, len(specs))
	total := 0
	for _, spec := range specs {
		results, err := RollFaces(src, spec.Sides, spec.Count)
		if err != nil {
			return Result{}, err
		}
		rollTotal := sum(results)
		rolls = append(rolls, Roll{
			Sides:   spec.Sides,
			Results: results,
			Total:   rollTotal,
		})
		total += rollTotal
	}

	return Result{Rolls: rolls, Total: total}, nil
}

// RollFaces rolls count independent dice with the given sides. Sides outside
// [1, MaxSides] or a count outside [1, MaxCount] return ErrInvalidDiceSpec.
func RollFaces(src Source, sides, count int) ([]int, error) {
	if !validSpec(sides, count) {
		return nil, ErrInvalidDiceSpec
	}
	return rollN(src, sides, count), nil
}

func validSpec(sides, count int) bool {
	return sides > 0 && count > 0 && sides <= MaxSides && count <= MaxCount
}

// D20Roll records the faces behind a d20 test.
type D20Roll struct {
	Rolls        []int
	Value        int
	Advantage    bool
	Disadvantage bool
}

// Natural20 reports whether the kept face is a 20.
func (r D20Roll) Natural20() bool { return r.Value == 20 }

// Natural1 reports whether the kept face is a 1.
func (r D20Roll) Natural1() bool { return r.Value == 1 }

// RollD20 rolls a d20. With exactly one of advantage or disadvantage it rolls
// twice and keeps the higher or lower face. With both or neither it rolls once.
func RollD20(src Source, advantage, disadvantage bool) D20Roll {
	if advantage == disadvantage {
		value := rollDie(src, 20)
		return D20Roll{Rolls: []int{value}, Value: value}
	}

	first := rollDie(src, 20)
	second := rollDie(src, 20)
	kept := first
	if advantage && second > kept {
		kept = second
	}
	if disadvantage && second < kept {
		kept = second
	}
	return D20Roll{
		Rolls:        []int{first, second},
		Value:        kept,
		Advantage:    advantage,
		Disadvantage: disadvantage,
	}
}

func rollN(src Source, sides, count int) []int {
	results := make([]int, count)
	for i := range results {
		results[i] = rollDie(src, sides)
	}
	return results
}

func rollDie(src Source, sides int) int {
	return src.Intn(sides) + 1
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
