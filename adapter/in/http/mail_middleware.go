// Package http is the Fiber surface of the service: health endpoints and the
// /mails intake trigger.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
)

const headerRequestID = "X-Request-ID"

// RequestContext assigns a request id (honoring an inbound X-Request-ID),
// echoes it on the response and logs start/end with timing.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("request_id", rid)
		c.Set(headerRequestID, rid)

		reqLog := log.With().
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		reqLog.Info().Str("client", c.IP()).Msg("http request start")

		start := time.Now()
		err := c.Next()

		reqLog.Info().
			Int("status", c.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Msg("http request end")
		return err
	}
}

// ErrorHandler renders handler errors through the AppError taxonomy: the
// error's status code with a JSON body carrying the code and message.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := apperr.AsAppError(err)
		return c.Status(appErr.HTTPStatus()).JSON(fiber.Map{
			"ok":    false,
			"code":  appErr.Code,
			"error": appErr.Message,
		})
	}
}

// RequestID returns the id assigned by RequestContext.
func RequestID(c *fiber.Ctx) string {
	if rid, ok := c.Locals("request_id").(string); ok {
		return rid
	}
	return ""
}
