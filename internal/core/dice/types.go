package dice

import "errors"

var (
	// ErrMissingDice indicates an empty dice pool.
	ErrMissingDice = errors.New("at least one die is required")
	// ErrInvalidDiceSpec indicates a spec with sides or count out of bounds.
	ErrInvalidDiceSpec = errors.New("dice must have positive, bounded sides and count")
	// ErrInvalidExpression indicates an unparseable dice expression.
	ErrInvalidExpression = errors.New("invalid dice expression")
)

// Spec describes count dice of the given sides.
type Spec struct {
	Sides int
	Count int
}

// Roll holds the faces rolled for one spec.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Result holds every roll of a pool.
type Result struct {
	Rolls []Roll
	Total int
}
