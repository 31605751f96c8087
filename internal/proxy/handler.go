package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/black-hole/black-hole/internal/asset"
	"github.com/black-hole/black-hole/internal/cache"
	"github.com/black-hole/black-hole/internal/config"
	"github.com/black-hole/black-hole/internal/contenttype"
	"github.com/black-hole/black-hole/internal/logging"
	"github.com/black-hole/black-hole/internal/origin"
	"github.com/black-hole/black-hole/internal/server"
)

// Handler 负责 orchestrate “路径分类 → 本地文件 | 缓存命中 → 回源写缓存”
// 的全流程，对外暴露 Fiber handler，内部复用共享回源客户端与磁盘缓存。
// 同一 (package, version, file) 的并发首次请求通过 singleflight 合并为
// 一次回源。
type Handler struct {
	proxyCfg config.ProxyConfig
	logger   *logrus.Logger
	store    cache.Store
	fetcher  *origin.Fetcher
	flights  singleflight.Group
}

// NewHandler constructs the asset handler with shared logger/store/fetcher.
func NewHandler(cfg *config.Config, logger *logrus.Logger, store cache.Store, fetcher *origin.Fetcher) *Handler {
	return &Handler{
		proxyCfg: cfg.Proxy,
		logger:   logger,
		store:    store,
		fetcher:  fetcher,
	}
}

// Handle 处理 /static/ 前缀之后的请求路径。所有失败都在这里转换为响应，
// 不做任何自动重试。
func (h *Handler) Handle(c fiber.Ctx, reqPath string) error {
	started := time.Now()
	requestID := server.RequestID(c)

	target, err := asset.Classify(reqPath)
	if err != nil {
		h.logResult(reqPath, "", false, fiber.StatusBadRequest, requestID, started, err)
		return writeError(c, fiber.StatusBadRequest, "malformed_path")
	}

	switch a := target.(type) {
	case asset.LocalAsset:
		return h.serveLocal(c, a, requestID, started)
	case asset.RemoteAsset:
		return h.serveRemote(c, a, requestID, started)
	default:
		return writeError(c, fiber.StatusBadRequest, "malformed_path")
	}
}

func (h *Handler) serveLocal(c fiber.Ctx, a asset.LocalAsset, requestID string, started time.Time) error {
	if !isSafePath(a.Name) {
		h.logResult(a.Name, "local", false, fiber.StatusForbidden, requestID, started, errors.New("unsafe path"))
		return writeError(c, fiber.StatusForbidden, "forbidden_path")
	}

	filePath := filepath.Join(h.proxyCfg.StaticDir, filepath.FromSlash(a.Name))
	body, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.logResult(a.Name, "local", false, fiber.StatusNotFound, requestID, started, nil)
			return writeError(c, fiber.StatusNotFound, "not_found")
		}
		h.logResult(a.Name, "local", false, fiber.StatusInternalServerError, requestID, started, err)
		return writeError(c, fiber.StatusInternalServerError, "read_failed")
	}

	c.Set("Content-Type", contenttype.For(a.Name))
	h.logResult(a.Name, "local", false, fiber.StatusOK, requestID, started, nil)
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *Handler) serveRemote(c fiber.Ctx, a asset.RemoteAsset, requestID string, started time.Time) error {
	reqPath := a.Package + "@" + a.Version + "/" + a.File

	// 代理关闭时按 not-found 处理，且不触发任何回源。
	if !h.proxyCfg.Enabled {
		h.logResult(reqPath, "remote", false, fiber.StatusNotFound, requestID, started, nil)
		return writeError(c, fiber.StatusNotFound, "not_found")
	}

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	locator := cache.Locator{Package: a.Package, Version: a.Version, File: a.File}

	result, err := h.store.Get(ctx, locator)
	switch {
	case err == nil:
		defer result.Reader.Close()
		return h.serveCached(c, a, result, requestID, started)
	case errors.Is(err, cache.ErrNotFound):
		// miss, continue
	default:
		h.logger.WithError(err).
			WithFields(logrus.Fields{"action": "cache_get", "package": a.Package, "version": a.Version}).
			Warn("cache_get_failed")
	}

	body, err := h.fetchOnce(ctx, a, locator)
	if err != nil {
		status := fiber.StatusBadGateway
		h.logResult(reqPath, "remote", false, status, requestID, started, err)
		return writeError(c, status, "upstream_failed")
	}

	c.Set("Content-Type", contenttype.For(a.File))
	c.Set("X-Black-Hole-Cache-Hit", "false")
	h.logResult(reqPath, "remote", false, fiber.StatusOK, requestID, started, nil)
	return c.Status(fiber.StatusOK).Send(body)
}

// fetchOnce 合并同一资源的并发回源：同 key 的等待者共享一次 fetch 结果。
// 缓存写入失败只记日志，已取回的正文仍然返回给请求方。
func (h *Handler) fetchOnce(ctx context.Context, a asset.RemoteAsset, locator cache.Locator) ([]byte, error) {
	key := a.Package + "@" + a.Version + "/" + a.File
	value, err, _ := h.flights.Do(key, func() (interface{}, error) {
		// 其他并发请求可能刚完成缓存填充，先复查一次。
		if result, getErr := h.store.Get(ctx, locator); getErr == nil {
			defer result.Reader.Close()
			return io.ReadAll(result.Reader)
		}

		body, fetchErr := h.fetcher.Fetch(ctx, a)
		if fetchErr != nil {
			return nil, fetchErr
		}

		if _, putErr := h.store.Put(ctx, locator, bytes.NewReader(body)); putErr != nil {
			h.logger.WithError(putErr).WithFields(logrus.Fields{
				"action":  "cache_put",
				"package": a.Package,
				"version": a.Version,
				"file":    a.File,
			}).Warn("cache_write_failed")
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

func (h *Handler) serveCached(
	c fiber.Ctx,
	a asset.RemoteAsset,
	result *cache.ReadResult,
	requestID string,
	started time.Time,
) error {
	c.Set("Content-Type", contenttype.For(a.File))
	c.Set("X-Black-Hole-Cache-Hit", "true")

	if length, ok := cachedContentLength(result.Entry.SizeBytes); ok {
		c.Response().Header.SetContentLength(length)
	}

	c.Status(fiber.StatusOK)
	_, err := io.Copy(c.Response().BodyWriter(), result.Reader)
	h.logResult(a.Package+"@"+a.Version+"/"+a.File, "remote", true, fiber.StatusOK, requestID, started, err)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "read cache failed")
	}
	return nil
}

func (h *Handler) logResult(
	path string,
	kind string,
	cacheHit bool,
	status int,
	requestID string,
	started time.Time,
	err error,
) {
	fields := logging.RequestFields(path, kind, cacheHit)
	fields["action"] = "asset"
	fields["status"] = status
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if fetchErr, ok := origin.AsFetchError(err); ok {
		fields["upstream_url"] = fetchErr.URL
		if fetchErr.StatusCode != 0 {
			fields["upstream_status"] = fetchErr.StatusCode
		}
	}
	if err != nil {
		fields["error"] = err.Error()
		h.logger.WithFields(fields).Error("asset_failed")
		return
	}
	h.logger.WithFields(fields).Info("asset_complete")
}

// cachedContentLength 将缓存条目大小换算为响应头可用的 int。超出平台 int
// 范围（32 位平台上超过 2GiB 的条目）时放弃设置，交给传输层按流式处理。
func cachedContentLength(size int64) (int, bool) {
	if size <= 0 || size > math.MaxInt {
		return 0, false
	}
	return int(size), true
}

func writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

// isSafePath 拒绝目录穿越与绝对路径，仅放行静态目录内的相对路径。
func isSafePath(p string) bool {
	if p == "" {
		return false
	}
	if strings.Contains(p, "..") || strings.Contains(p, "//") || strings.ContainsRune(p, '\\') {
		return false
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return false
	}
	return true
}
