package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/ledgerconnect/internal/app"
	"github.com/dropDatabas3/ledgerconnect/internal/config"
	httpserver "github.com/dropDatabas3/ledgerconnect/internal/http"
	"github.com/dropDatabas3/ledgerconnect/internal/observability/logger"
)

var version = "dev"

func main() {
	var (
		cfgPath     = flag.String("config", "configs/config.yaml", "ruta del config YAML")
		envFile     = flag.String("env-file", "", "archivo .env a cargar antes del config")
		printConfig = flag.Bool("print-config", false, "imprime la config efectiva y sale")
	)
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("env-file: %v", err)
		}
	} else {
		// .env local si existe; en prod las vars vienen del entorno.
		_ = godotenv.Load()
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *printConfig {
		// El WIF no viaja: está fuera del YAML por diseño del struct.
		out, _ := yaml.Marshal(cfg)
		os.Stdout.Write(out)
		return
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "ledgerconnect",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg)
	if err != nil {
		logger.L().Fatal("no se pudo construir el servicio", logger.Err(err))
	}
	defer container.Close()

	logger.L().Info("escuchando",
		logger.String("addr", cfg.Server.Addr),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
	)

	if err := httpserver.Start(ctx, cfg.Server.Addr, container.Handler); err != nil {
		logger.L().Fatal("servidor terminó con error", logger.Err(err))
	}
	logger.L().Info("apagado limpio")
}
