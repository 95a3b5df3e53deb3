package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"github.com/gobarber/gobarber/libs/config"
	"github.com/gobarber/gobarber/libs/db"
	"github.com/gobarber/gobarber/libs/runtime"
	"github.com/gobarber/gobarber/migrations"
)

func main() {
	_ = godotenv.Load()

	logger := runtime.NewLogger("gobarber-migrate")

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.Open(ctx, dbURL, 2)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool, logger); err != nil {
		logger.Error("migrations failed", "err", err)
		panic(err)
	}
	logger.Info("migrations up to date")
}
