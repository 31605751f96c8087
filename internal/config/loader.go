package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStatic, err := filepath.Abs(cfg.Proxy.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("无法解析静态目录: %w", err)
	}
	cfg.Proxy.StaticDir = absStatic

	absCache, err := filepath.Abs(cfg.Proxy.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Proxy.CacheDir = absCache

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Host", "localhost")
	v.SetDefault("Server.Port", 8080)
	v.SetDefault("Proxy.Enabled", false)
	v.SetDefault("Proxy.StaticDir", "./static")
	v.SetDefault("Proxy.CacheDir", "./cache")
	v.SetDefault("Proxy.Origin", "https://unpkg.com")
	v.SetDefault("Proxy.UpstreamTimeout", "30s")
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.FilePath", "")
	v.SetDefault("Log.MaxSize", 100)
	v.SetDefault("Log.MaxBackups", 10)
	v.SetDefault("Log.Compress", true)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Proxy.StaticDir == "" {
		cfg.Proxy.StaticDir = "./static"
	}
	if cfg.Proxy.CacheDir == "" {
		cfg.Proxy.CacheDir = "./cache"
	}
	if cfg.Proxy.Origin == "" {
		cfg.Proxy.Origin = "https://unpkg.com"
	}
	if cfg.Proxy.UpstreamTimeout.DurationValue() == 0 {
		cfg.Proxy.UpstreamTimeout = Duration(30 * time.Second)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
