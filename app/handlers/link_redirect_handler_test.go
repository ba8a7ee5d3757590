package handlers

import (
	"context"
	"net/http/httptest"
	"testing"

	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLinkFlow overrides Visit; the embedded interface covers the rest
type stubLinkFlow struct {
	businessflow.LinkFlow
	target string
	err    error
}

func (s *stubLinkFlow) Visit(ctx context.Context, uid, ip string, userAgent *string) (string, error) {
	return s.target, s.err
}

func newRedirectApp(flow businessflow.LinkFlow) *fiber.App {
	app := fiber.New()
	h := NewLinkRedirectHandler(flow)
	app.Get("/s/:uid", h.Visit)
	return app
}

func TestLinkRedirectHandler(t *testing.T) {
	t.Run("RedirectsToTarget", func(t *testing.T) {
		app := newRedirectApp(&stubLinkFlow{target: "https://example.com/orientation"})

		resp, err := app.Test(httptest.NewRequest("GET", "/s/abc12345", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://example.com/orientation", resp.Header.Get("Location"))
	})

	t.Run("UnknownLink", func(t *testing.T) {
		app := newRedirectApp(&stubLinkFlow{err: businessflow.ErrLinkNotFound})

		resp, err := app.Test(httptest.NewRequest("GET", "/s/missing0", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("InactiveLink", func(t *testing.T) {
		app := newRedirectApp(&stubLinkFlow{err: businessflow.ErrLinkInactive})

		resp, err := app.Test(httptest.NewRequest("GET", "/s/stale123", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		app := newRedirectApp(&stubLinkFlow{err: businessflow.NewBusinessError("VISIT_FAILED", "Failed to record visit", nil)})

		resp, err := app.Test(httptest.NewRequest("GET", "/s/abc12345", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
