package main

import (
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/eskrenkovic/slotbot/internal/config"
	"github.com/eskrenkovic/slotbot/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 {
		rootPath := os.Args[1]
		if rootPath == "" {
			log.Fatal("root directory path is empty")
		}

		if err := godotenv.Load(path.Join(rootPath, "config.env")); err != nil {
			log.Fatal(err)
		}

		if os.Getenv(config.RootPathEnv) == "" {
			if err := os.Setenv(config.RootPathEnv, rootPath); err != nil {
				log.Fatal(err)
			}
		}
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = conf.Logger.Sync() }()

	srv, err := server.NewBotServer(conf)
	if err != nil {
		conf.Logger.Fatal("failed to build server", zap.Error(err))
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		conf.Logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errs:
		if err != nil {
			conf.Logger.Error("server stopped", zap.Error(err))
		}
	}

	if err := srv.Stop(); err != nil {
		conf.Logger.Error("failed to stop server", zap.Error(err))
	}
}
