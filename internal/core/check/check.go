// Package check compares roll totals against target numbers such as armor
// class or a saving throw DC.
package check

// MeetsDifficulty reports whether total reaches difficulty. Ties succeed.
func MeetsDifficulty(total, difficulty int) bool {
	return total >= difficulty
}

// Result is the outcome of comparing a total to a target number.
type Result struct {
	Total   int
	Target  int
	Success bool
	Margin  int
}

// Against compares total to target.
func Against(total, target int) Result {
	return Result{
		Total:   total,
		Target:  target,
		Success: MeetsDifficulty(total, target),
		Margin:  total - target,
	}
}

// Halve applies the half-on-success rule used by saving throws, truncating
// toward zero.
func Halve(amount int, success bool) int {
	if success {
		return amount / 2
	}
	return amount
}
