package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"financeapi/internal/commands"
	"financeapi/internal/config"
	"financeapi/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand(commands.DefaultDeps(cfg, os.Stdout)).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
