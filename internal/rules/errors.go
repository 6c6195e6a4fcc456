package rules

// RuleError is a custom error type for rule violations
type RuleError string

// Error implements the error interface
func (e RuleError) Error() string {
	return string(e)
}

const (
	ErrInvalidPlayerCount RuleError = "at least 4 players are required"
	ErrNilShuffler        RuleError = "shuffler cannot be nil"
)
