package health

import (
	"context"
	"errors"
	"fmt"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Result is the outcome of one checker.
type Result struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	// Ready runs every checker. The error joins the failures, each prefixed
	// with its checker name.
	Ready(ctx context.Context) ([]Result, error)
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers. Nil checkers are skipped so
// optional backends can be passed unconditionally.
func NewService(checkers ...Checker) ReadinessUseCase {
	s := &service{}
	for _, ch := range checkers {
		if ch != nil {
			s.checkers = append(s.checkers, ch)
		}
	}
	return s
}

func (s *service) Ready(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(s.checkers))
	var errs []error
	for _, ch := range s.checkers {
		r := Result{Name: ch.Name(), OK: true}
		if err := ch.Check(ctx); err != nil {
			r.OK = false
			r.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
		results = append(results, r)
	}
	return results, errors.Join(errs...)
}
