package controller

import (
	"context"
	"net/http"
	"time"

	"rollcall.io/application/constants"
	"rollcall.io/application/interfaces"
	server_response "rollcall.io/infrastructure/serverResponse"
)

func (c *Controller) Ping(ctx *interfaces.ApplicationContext[any]) {
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "pong!", nil, nil, nil)
}

// Healthz reports the service version and whether the face models answer.
func (c *Controller) Healthz(ctx *interfaces.ApplicationContext[any]) {
	models := "ok"
	code := http.StatusOK
	if c.Health == nil {
		models = "unconfigured"
		code = http.StatusServiceUnavailable
	} else {
		probeCtx, cancel := context.WithTimeout(ctx.Context(), 3*time.Second)
		defer cancel()
		if err := c.Health.Healthy(probeCtx); err != nil {
			models = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	var responseCode *uint
	if code != http.StatusOK {
		responseCode = &constants.MODEL_UNAVAILABLE
	}
	server_response.Responder.Respond(ctx.Ctx, code, "health checked", map[string]any{
		"version": c.Version,
		"models":  models,
	}, nil, responseCode)
}
