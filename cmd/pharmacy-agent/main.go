// =============================================================================
// PharmacyAgent 主入口
// =============================================================================
// 完整服务入口点，包含运维 HTTP 服务、健康检查、Prometheus 指标
//
// 使用方法:
//
//	pharmacy-agent serve                       # 启动服务
//	pharmacy-agent serve --config config.yaml  # 指定配置文件
//	pharmacy-agent console                     # 本地文本会话
//	pharmacy-agent voice --input call.pcm      # 回环房间里的本地语音会话
//	pharmacy-agent version                     # 显示版本信息
//	pharmacy-agent health                      # 健康检查
//	pharmacy-agent migrate up                  # 运行数据库迁移
//	pharmacy-agent migrate seed                # 写入演示目录数据
// =============================================================================

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "console":
		runConsole(os.Args[2:])
	case "voice":
		runVoice(os.Args[2:])
	case "migrate":
		runMigrate(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadConfig 解析 --config 参数并加载配置
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, string) {
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	return cfg, *configPath
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg, configPath := loadConfig(fs, args)

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting pharmacy-agent",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	server := NewServer(cfg, configPath, logger)
	if err := server.Run(); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("pharmacy-agent stopped")
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("pharmacy-agent %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`pharmacy-agent - Pharmacy Voice Assistant

Usage:
  pharmacy-agent <command> [options]

Commands:
  serve     Start the ops HTTP server (health, metrics, version)
  console   Run an interactive text session against the agent registry
  voice     Run a voice session through a loopback room (PCM in, clips out)
  migrate   Pharmacy directory migration commands
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve', 'console' and 'voice':
  --config <path>   Path to configuration file (YAML)

Options for 'voice':
  --input <path>        16-bit mono PCM file used as the caller microphone ('-' for stdin)
  --output-dir <path>   Directory for synthesized reply clips
  --rate <hz>           Input sample rate (default 16000)
  --frame-ms <ms>       Input frame duration (default 20)

Migration subcommands:
  migrate up        Apply all pending migrations
  migrate seed      Insert demo prescriptions and medicines

Examples:
  pharmacy-agent serve --config /etc/pharmacy-agent/config.yaml
  pharmacy-agent console
  pharmacy-agent voice --input call.pcm --output-dir ./replies
  pharmacy-agent migrate up
  pharmacy-agent health --addr http://localhost:8080`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
