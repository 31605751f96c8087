package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/black-hole/black-hole/internal/cache"
	"github.com/black-hole/black-hole/internal/config"
	"github.com/black-hole/black-hole/internal/logging"
	"github.com/black-hole/black-hole/internal/origin"
	"github.com/black-hole/black-hole/internal/proxy"
	"github.com/black-hole/black-hole/internal/server"
	"github.com/black-hole/black-hole/internal/server/routes"
	"github.com/black-hole/black-hole/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["proxy_enabled"] = cfg.Proxy.Enabled
		fields["origin"] = cfg.Proxy.Origin
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 静态/缓存目录 → 回源客户端 → 资源处理器 → Fiber server，
	// 保证所有请求共享统一的缓存实例与 http.Client。
	if err := os.MkdirAll(cfg.Proxy.StaticDir, 0o755); err != nil {
		fmt.Fprintf(stdErr, "创建静态目录失败: %v\n", err)
		return 1
	}

	store, err := cache.NewStore(cfg.Proxy.CacheDir)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存目录失败: %v\n", err)
		return 1
	}

	httpClient := server.NewUpstreamClient(cfg)
	fetcher := origin.NewFetcher(httpClient, cfg.Proxy.Origin)
	assetHandler := proxy.NewHandler(cfg, logger, store, fetcher)

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_addr"] = cfg.ListenAddr()
	fields["proxy_enabled"] = cfg.Proxy.Enabled
	fields["origin"] = cfg.Proxy.Origin
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, assetHandler, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("black-hole", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 BLACK_HOLE_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("BLACK_HOLE_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, assets server.AssetHandler, logger *logrus.Logger) error {
	app, err := server.NewApp(server.AppOptions{
		Logger: logger,
		Assets: assets,
	})
	if err != nil {
		return err
	}
	routes.RegisterStatusRoutes(app, cfg)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"addr":   cfg.ListenAddr(),
	}).Info("Fiber 服务启动")

	return app.Listen(cfg.ListenAddr())
}
