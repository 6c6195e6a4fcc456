package ai

// DriverError is a custom error type for driver errors
type DriverError string

// Error implements the error interface
func (e DriverError) Error() string {
	return string(e)
}

const (
	ErrNilConfig = DriverError("config cannot be nil")
	ErrNilRepo   = DriverError("room repository cannot be nil")
	ErrNilRandom = DriverError("random source cannot be nil")
	ErrNilClock  = DriverError("clock cannot be nil")
	ErrNilRoom   = DriverError("room cannot be nil")
)
