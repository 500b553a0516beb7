package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/config"
	"github.com/segurplan-dev/roster-manager/backend/internal/repository"
	"github.com/segurplan-dev/roster-manager/backend/internal/roster"
	"github.com/segurplan-dev/roster-manager/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operación a ejecutar (1: insertar vigilantes aleatorios, 2: insertar puestos aleatorios, 3: insertar patrones aleatorios, 4: pintar series de demostración)")
	flag.IntVar(&n, "n", 5, "número de registros a insertar")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Cargar la configuración
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Crear el pool de conexiones
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("no se pudo crear el pool de conexiones", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open solo crea el pool, no conecta; hay que hacer ping explícito
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("no se pudo conectar con la base de datos", "error", err)
		return
	}

	// Crear el repository y un motor sin candados ni eventos: la siembra es
	// secuencial y no necesita auditoría
	repo := repository.NewRepository(cfg, dbpool)
	engine := roster.NewEngine(cfg, repo, roster.NoopLocker{}, nil)

	switch op {
	case 0:
		slog.Error("no se ha indicado ninguna operación")
	case 1:
		if n <= 0 {
			slog.Error("indique un número de vigilantes válido")
		} else {
			inserted := seed.InsertRandomGuards(repo, n)
			slog.Info("vigilantes insertados", slog.Int("count", inserted))
		}
	case 2:
		if n <= 0 {
			slog.Error("indique un número de puestos válido")
		} else {
			inserted := seed.InsertRandomPosts(repo, cfg.Seed.InstallationID, n)
			slog.Info("puestos insertados", slog.Int("count", inserted))
		}
	case 3:
		if n <= 0 {
			slog.Error("indique un número de patrones válido")
		} else {
			inserted := seed.InsertRandomPatterns(repo, n)
			slog.Info("patrones insertados", slog.Int("count", inserted))
		}
	case 4:
		painted := seed.PaintRandomSeries(engine, repo, cfg.Seed.InstallationID)
		slog.Info("series pintadas", slog.Int("count", painted))
	default:
		slog.Error("operación desconocida", slog.Int("op", op))
	}
}
