package stage

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateStage    = errors.New("duplicate stage")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrInvalidStage      = errors.New("invalid stage")
	ErrStagePanic        = errors.New("stage panicked")
)

// CyclicDependencyError is returned by Build when no execution order exists.
type CyclicDependencyError struct {
	// Stages holds every stage that could not be ordered, in registration
	// order. It includes the stages of the cycle and the ones depending on it.
	Stages []string
	// Cycle is one concrete cycle, first stage repeated at the end.
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency between stages: " + strings.Join(e.Cycle, " -> ")
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}
