package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AssetHandler describes the component responsible for resolving /static/
// requests. It allows injecting fake handlers during tests.
type AssetHandler interface {
	Handle(c fiber.Ctx, path string) error
}

// AssetHandlerFunc adapts a function to the AssetHandler interface.
type AssetHandlerFunc func(fiber.Ctx, string) error

// Handle makes AssetHandlerFunc satisfy AssetHandler.
func (f AssetHandlerFunc) Handle(c fiber.Ctx, path string) error {
	return f(c, path)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger *logrus.Logger
	Assets AssetHandler
	// UIDir 存放首页 index.html，为空时默认 ./ui。
	UIDir string
}

const contextKeyRequestID = "_blackhole_request_id"

// NewApp builds a Fiber application exposing the /static/ asset route, the
// cached index page and structured error handling.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Assets == nil {
		return nil, errors.New("asset handler is required")
	}
	uiDir := opts.UIDir
	if uiDir == "" {
		uiDir = "ui"
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	index := newIndexPage(uiDir, opts.Logger)
	app.Get("/", index.handle)

	app.Get("/static/*", func(c fiber.Ctx) error {
		return opts.Assets.Handle(c, c.Params("*"))
	})

	return app, nil
}

// requestContextMiddleware 为每个请求生成 Request ID 并回写响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
