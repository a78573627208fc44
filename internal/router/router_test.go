package router

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func routes(e *echo.Echo) map[string]bool {
	out := map[string]bool{}
	for _, r := range e.Routes() {
		out[r.Method+" "+r.Path] = true
	}
	return out
}

func TestSetupRoutes_TriggerModes(t *testing.T) {
	e := echo.New()
	SetupRoutes(e, Deps{JWTSecret: "s3cret"})
	got := routes(e)
	assert.True(t, got[http.MethodPost+" /internal/triggers/feedback"])
	assert.True(t, got[http.MethodPost+" /internal/triggers/reply"])
	assert.True(t, got[http.MethodPost+" /internal/reconcile/:user_id"])

	e = echo.New()
	SetupRoutes(e, Deps{JWTSecret: "s3cret", WatchChangeStreams: true})
	got = routes(e)
	assert.False(t, got[http.MethodPost+" /internal/triggers/feedback"])
	assert.False(t, got[http.MethodPost+" /internal/triggers/reply"])
	assert.True(t, got[http.MethodPost+" /internal/reconcile/:user_id"])
	assert.True(t, got[http.MethodGet+" /api/v1/workspaces/:workspace_id/notifications"])
}
