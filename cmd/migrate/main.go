// Command migrate aplica o revierte el esquema PostgreSQL embebido.
//
//	migrate up    aplica todas las migraciones pendientes
//	migrate down  revierte la última
package main

import (
	"os"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name + "-migrate"})

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	version, dirty, err := postgres.Migrate(cfg.DB.ConnectionString(), direction)
	if err != nil {
		log.Fatal().Err(err).Str("direction", direction).Msg("migración fallida")
	}
	log.Info().
		Str("direction", direction).
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("migración completada")
}
