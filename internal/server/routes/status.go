package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/black-hole/black-hole/internal/config"
	"github.com/black-hole/black-hole/internal/version"
)

// RegisterStatusRoutes 暴露 /-/status 诊断接口，供运维确认生效配置。
func RegisterStatusRoutes(app *fiber.App, cfg *config.Config) {
	if app == nil || cfg == nil {
		return
	}

	app.Get("/-/status", func(c fiber.Ctx) error {
		return c.JSON(statusPayload{
			Version:      version.Full(),
			ProxyEnabled: cfg.Proxy.Enabled,
			Origin:       cfg.Proxy.Origin,
			StaticDir:    cfg.Proxy.StaticDir,
			CacheDir:     cfg.Proxy.CacheDir,
		})
	})
}

type statusPayload struct {
	Version      string `json:"version"`
	ProxyEnabled bool   `json:"proxy_enabled"`
	Origin       string `json:"origin"`
	StaticDir    string `json:"static_dir"`
	CacheDir     string `json:"cache_dir"`
}
