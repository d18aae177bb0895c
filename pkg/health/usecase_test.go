package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                  { return s.name }
func (s stubChecker) Check(_ context.Context) error { return s.err }

func TestReady(t *testing.T) {
	results, err := NewService().Ready(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, results)

	results, err = NewService(nil, stubChecker{name: "postgres"}).Ready(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []Result{{Name: "postgres", OK: true}}, results)
}

func TestReady_RunsEveryChecker(t *testing.T) {
	refused := errors.New("refused")
	results, err := NewService(
		stubChecker{name: "postgres", err: errors.New("timeout")},
		stubChecker{name: "redis", err: refused},
	).Ready(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, refused)
	assert.Equal(t, "postgres: timeout\nredis: refused", err.Error())
	assert.Equal(t, []Result{
		{Name: "postgres", Error: "timeout"},
		{Name: "redis", Error: "refused"},
	}, results)
}
