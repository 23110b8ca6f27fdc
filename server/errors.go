package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
)

const msgInternal = "Internal server error"

// ErrorHandler turns a handler error into the JSON error envelope. Rich
// errors answer with their own status and message, validation errors add
// details and anything unexpected becomes a 500 that only leaks its text
// when development is true.
func ErrorHandler(logger auth.Logger, development bool) router.ErrorHandler {
	if logger == nil {
		logger = auth.NoopLogger{}
	}

	return func(ctx router.Context, err error) error {
		status, body := errorBody(logger, development, ctx.Method(), ctx.Path(), err)
		return ctx.JSON(status, body)
	}
}

// FallbackErrorHandler is installed on the fiber app for what never
// reaches a route: unmatched paths and recovered panics.
func FallbackErrorHandler(logger auth.Logger, development bool) fiber.ErrorHandler {
	if logger == nil {
		logger = auth.NoopLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusNotFound {
			return c.Status(fiber.StatusNotFound).JSON(notFoundBody(c.Method(), c.Path()))
		}

		status, body := errorBody(logger, development, c.Method(), c.Path(), err)
		return c.Status(status).JSON(body)
	}
}

func errorBody(logger auth.Logger, development bool, method, path string, err error) (int, map[string]any) {
	status := http.StatusInternalServerError
	body := map[string]any{"success": false}

	var richErr *goerrors.Error
	var fiberErr *fiber.Error

	switch {
	case goerrors.As(err, &richErr):
		status = auth.HTTPStatus(richErr)
		body["error"] = richErr.Message
		if details := auth.ValidationDetails(richErr); len(details) > 0 {
			body["details"] = details
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"error", err.Error(),
				"text_code", richErr.TextCode,
				"method", method,
				"path", path,
				"metadata", print.MaybePrettyJSON(richErr.Metadata),
			)
			if development {
				body["stack"] = fmt.Sprintf("%+v", err)
			}
		}
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		body["error"] = fiberErr.Message
	default:
		logger.Error("unexpected error",
			"error", err.Error(),
			"method", method,
			"path", path,
		)
		body["error"] = msgInternal
		if development {
			body["error"] = err.Error()
			body["stack"] = fmt.Sprintf("%+v", err)
		}
	}

	body["timestamp"] = timestamp()
	return status, body
}

func notFoundBody(method, path string) map[string]any {
	return map[string]any{
		"success":   false,
		"error":     "Not found",
		"message":   fmt.Sprintf("Route %s %s not found", method, path),
		"timestamp": timestamp(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
