package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/health"
)

type namedChecker struct {
	name string
	err  error
}

func (c namedChecker) Name() string                { return c.name }
func (c namedChecker) Check(context.Context) error { return c.err }

func TestReady_ReportsFailingChecker(t *testing.T) {
	tests := []struct {
		name   string
		checks []health.Checker
		status int
		want   readyResponse
	}{
		{
			name:   "all up",
			checks: []health.Checker{namedChecker{name: "postgres"}},
			status: http.StatusOK,
			want:   readyResponse{Status: "ready", Checks: []health.Result{{Name: "postgres", OK: true}}},
		},
		{
			name:   "redis down",
			checks: []health.Checker{namedChecker{name: "postgres"}, namedChecker{name: "redis", err: errors.New("connection refused")}},
			status: http.StatusServiceUnavailable,
			want: readyResponse{Status: "not_ready", Checks: []health.Result{
				{Name: "postgres", OK: true},
				{Name: "redis", Error: "connection refused"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/ready", NewHealthHandler(health.NewService(tt.checks...), zap.NewNop()).Ready)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var got readyResponse
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
