package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/fyerfyer/treaty-aligner/api"
	"github.com/fyerfyer/treaty-aligner/api/handler"
	"github.com/fyerfyer/treaty-aligner/api/middleware"
	alignerconfig "github.com/fyerfyer/treaty-aligner/config"
	"github.com/fyerfyer/treaty-aligner/internal/app"
)

// 命令行参数
type flags struct {
	ConfigFile string // 配置文件路径
	EnvFile    string // .env 文件路径
	Port       int    // 服务端口，覆盖配置文件
	Mode       string // 运行模式 (debug/release)，覆盖配置文件
	LogLevel   string // 日志级别，覆盖配置文件
	Provider   string // 大模型后端，覆盖配置文件
}

func main() {
	f := parseFlags()

	// .env 只用于本地开发，不存在时忽略
	if err := godotenv.Load(f.EnvFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Failed to load %s: %v", f.EnvFile, err)
	}

	cfg, err := alignerconfig.Load(f.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, f)

	gin.SetMode(cfg.Server.Mode)

	logger := middleware.SetupLogger(cfg.Log)
	logger.Info("Starting treaty aligner...")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize services: %v", err)
	}
	defer application.Close()

	alignHandler := handler.NewAlignHandler(application.Alignment, application.Extraction,
		handler.WithMaxUploadSize(cfg.Server.MaxUploadSize))
	r := api.SetupRouter(alignHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		logger.Infof("Server is running on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}

	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.StringVar(&f.EnvFile, "env", ".env", "Path to .env file")
	flag.IntVar(&f.Port, "port", 0, "Server port (overrides config)")
	flag.StringVar(&f.Mode, "mode", "", "Run mode (debug/release)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flag.StringVar(&f.Provider, "provider", "", "LLM provider (azure/openai/ollama)")

	flag.Parse()
	return f
}

// applyFlags 命令行上明确设置的参数覆盖配置文件
func applyFlags(cfg *alignerconfig.Config, f flags) {
	if f.Port > 0 {
		cfg.Server.Port = f.Port
	}
	if f.Mode != "" {
		cfg.Server.Mode = f.Mode
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.Provider != "" {
		cfg.LLM.Provider = f.Provider
	}
}
