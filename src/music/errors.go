package music

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProfile matches every *InvalidProfileError.
	ErrInvalidProfile = errors.New("invalid mood profile")
	// ErrEmptyPool matches every *EmptyPoolError.
	ErrEmptyPool = errors.New("lucky pick pool is empty")
)

// InvalidProfileError is returned when a mood profile update is rejected.
// The previous profile stays in effect.
type InvalidProfileError struct {
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidProfile, e.Reason)
}

func (e *InvalidProfileError) Is(target error) bool {
	return target == ErrInvalidProfile
}

// EmptyPoolError is returned when a lucky pick has no eligible song.
type EmptyPoolError struct {
	Reason string
}

func (e *EmptyPoolError) Error() string {
	if e.Reason == "" {
		return ErrEmptyPool.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEmptyPool, e.Reason)
}

func (e *EmptyPoolError) Is(target error) bool {
	return target == ErrEmptyPool
}
