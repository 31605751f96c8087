package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// ServerConfig 决定 HTTP 监听地址。
type ServerConfig struct {
	Host string `mapstructure:"Host"`
	Port int    `mapstructure:"Port"`
}

// ProxyConfig 控制静态目录、磁盘缓存与回源行为。Enabled 为 false 时，
// 所有 package@version 形态的请求一律按 not-found 处理，不产生任何回源。
type ProxyConfig struct {
	Enabled         bool     `mapstructure:"Enabled"`
	StaticDir       string   `mapstructure:"StaticDir"`
	CacheDir        string   `mapstructure:"CacheDir"`
	Origin          string   `mapstructure:"Origin"`
	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`
}

// LogConfig 描述日志输出行为，FilePath 为空时输出到 stdout。
type LogConfig struct {
	Level      string `mapstructure:"Level"`
	FilePath   string `mapstructure:"FilePath"`
	MaxSize    int    `mapstructure:"MaxSize"`
	MaxBackups int    `mapstructure:"MaxBackups"`
	Compress   bool   `mapstructure:"Compress"`
}

// Config 是 TOML 文件映射的整体结构，启动时构造一次后只读。
type Config struct {
	Server ServerConfig `mapstructure:"Server"`
	Proxy  ProxyConfig  `mapstructure:"Proxy"`
	Log    LogConfig    `mapstructure:"Log"`
}

// ListenAddr 拼接 host:port 监听地址。
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
