package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weekTracker/internal/app"
	"weekTracker/internal/config"
	"weekTracker/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "путь к config.yml")
	printConfig := flag.Bool("print-config", false, "вывести действующую конфигурацию и выйти")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "конфигурация:", err)
		os.Exit(1)
	}

	if *printConfig {
		if err := cfg.Dump(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		logger.Error("App: Ошибка инициализации", err)
		if shutdownErr := a.Shutdown(); shutdownErr != nil {
			fmt.Fprintln(os.Stderr, shutdownErr)
		}
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: Сервер остановлен с ошибкой", err)
		os.Exit(1)
	}
	logger.Info("App: Сервер остановлен")
}
