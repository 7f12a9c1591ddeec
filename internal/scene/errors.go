package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrDiverged indicates a pendulum state became NaN or Inf.
	ErrDiverged = errors.New("scene: pendulum diverged (NaN or Inf detected)")

	// ErrEmpty indicates a scene without pendulums.
	ErrEmpty = errors.New("scene: no pendulums")
)

// DivergedError records which pendulum left the finite domain and when.
type DivergedError struct {
	Index int
	Frame int
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("%s: pendulum %d at frame %d", ErrDiverged, e.Index, e.Frame)
}

func (e *DivergedError) Unwrap() error {
	return ErrDiverged
}
