package server

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// indexPage 缓存 ui/index.html 的内容，首次读取后常驻内存。
type indexPage struct {
	path   string
	logger *logrus.Logger

	mu     sync.RWMutex
	cached []byte
}

func newIndexPage(uiDir string, logger *logrus.Logger) *indexPage {
	return &indexPage{
		path:   filepath.Join(uiDir, "index.html"),
		logger: logger,
	}
}

func (p *indexPage) handle(c fiber.Ctx) error {
	p.mu.RLock()
	cached := p.cached
	p.mu.RUnlock()

	if cached == nil {
		content, err := os.ReadFile(p.path)
		if err != nil {
			p.logger.WithFields(logrus.Fields{
				"action": "index_read",
				"path":   p.path,
			}).WithError(err).Warn("index_missing")
			return c.Status(fiber.StatusNotFound).SendString("404 - index.html file not found")
		}

		p.mu.Lock()
		p.cached = content
		p.mu.Unlock()
		cached = content
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Status(fiber.StatusOK).Send(cached)
}
