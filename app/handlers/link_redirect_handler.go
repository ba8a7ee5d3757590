package handlers

import (
	"context"
	"log"
	"time"

	"github.com/campushq/campus-hub/app/middleware"
	businessflow "github.com/campushq/campus-hub/business_flow"
	"github.com/campushq/campus-hub/utils"
	"github.com/gofiber/fiber/v3"
)

// LinkRedirectHandlerInterface defines the contract for the public short link redirect
type LinkRedirectHandlerInterface interface {
	Visit(c fiber.Ctx) error
}

type LinkRedirectHandler struct {
	flow businessflow.LinkFlow
}

func NewLinkRedirectHandler(flow businessflow.LinkFlow) LinkRedirectHandlerInterface {
	return &LinkRedirectHandler{flow: flow}
}

// Visit resolves a short link and redirects to its target
// @Summary Visit short link
// @Tags Links
// @Produce json
// @Param uid path string true "Short link UID"
// @Success 302 {string} string "Redirect"
// @Failure 404 {object} any
// @Failure 500 {object} any
// @Router /s/{uid} [get]
func (h *LinkRedirectHandler) Visit(c fiber.Ctx) error {
	uid := c.Params("uid")
	if uid == "" {
		return c.Status(fiber.StatusBadRequest).SendString("invalid short link")
	}
	ua := c.Get("User-Agent")
	ip := c.IP()

	var userAgent *string
	if ua != "" {
		userAgent = &ua
	}

	target, err := h.flow.Visit(h.createRequestContext(c, "/s/"+uid), uid, ip, userAgent)
	if err != nil {
		if businessflow.IsLinkNotFound(err) || businessflow.IsLinkInactive(err) {
			middleware.CountLinkRedirect("not_found")
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		middleware.CountLinkRedirect("error")
		log.Println("Visit link failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	middleware.CountLinkRedirect("found")
	return c.Redirect().Status(fiber.StatusFound).To(target)
}

func (h *LinkRedirectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *LinkRedirectHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
