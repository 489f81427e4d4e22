package driver

import "errors"

// Predefined errors
var (
	// ErrEngineOpen is returned when the in-memory database cannot be created
	ErrEngineOpen = errors.New("madtsql driver: failed to open in-memory database")

	// ErrNilDataset is returned when a nil dataset is handed to the engine
	ErrNilDataset = errors.New("madtsql driver: nil dataset")

	// ErrTooManyColumns is returned when a table has too many columns
	ErrTooManyColumns = errors.New("madtsql driver: too many columns")

	// ErrInvalidPath is returned when a path is empty or contains a NUL byte
	ErrInvalidPath = errors.New("madtsql driver: invalid path")
)
