package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResourceNotFound     = errors.New("resource not found")
	ErrPriceNotFound        = errors.New("price not found")
	ErrEmptyPriceHistory    = errors.New("no price history in window")
	ErrCyclicDependency     = errors.New("cyclic dependency")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// CycleError reports the production chain that loops back on itself
type CycleError struct {
	Path []ResourceID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return fmt.Sprintf("%v: %s", ErrCyclicDependency, strings.Join(parts, " -> "))
}

// Is lets errors.Is match ErrCyclicDependency
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicDependency
}
