package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return newFieldError("Server.Port", "必须在 1-65535")
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return newFieldError("Server.Host", "不能为空")
	}
	if c.Proxy.StaticDir == "" {
		return newFieldError("Proxy.StaticDir", "不能为空")
	}
	if c.Proxy.CacheDir == "" {
		return newFieldError("Proxy.CacheDir", "不能为空")
	}
	if c.Proxy.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Proxy.UpstreamTimeout", "必须大于 0")
	}
	if err := validateOrigin(c.Proxy.Origin); err != nil {
		return fmt.Errorf("Proxy.Origin: %w", err)
	}

	return nil
}

func validateOrigin(raw string) error {
	if raw == "" {
		return errors.New("缺少回源地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，回源: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("回源缺少 Host: %s", raw)
	}
	return nil
}
