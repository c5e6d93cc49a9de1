package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/configuration"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	if err := merch.Migrate(ctx, db, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	engine := merch.NewEngine(pool, conf, logger)

	go runMatchingLoop(engine, logger)

	http.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listening on :9090")
	if err := http.ListenAndServe(":9090", nil); err != nil {
		logger.WithError(err).Fatal("metrics server stopped")
	}
}

// runMatchingLoop runs a matching and classification pass every hour. Both
// passes are idempotent, so overlap with imports is harmless.
func runMatchingLoop(engine *merch.Engine, logger *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		ctx := engine.Context(context.Background())
		if _, err := engine.Matching.Run(ctx); err != nil {
			logger.Errorf("matching pass failed: %v", err)
		}
		if _, err := engine.Classification.Refresh(ctx); err != nil {
			logger.Errorf("classification pass failed: %v", err)
		}
		<-ticker.C
	}
}
