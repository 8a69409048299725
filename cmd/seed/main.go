package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/repository"
	"github.com/noah-isme/tutorbook/pkg/config"
	"github.com/noah-isme/tutorbook/pkg/database"
	"github.com/noah-isme/tutorbook/pkg/logger"
	"github.com/noah-isme/tutorbook/pkg/storage"
)

// seed applies the schema and copies goals.json and teachers.json from
// DATA_DIR into Postgres. Rows that already exist are left untouched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	local, err := storage.NewLocalStorage(cfg.Storage.DataDir)
	if err != nil {
		logr.Fatal("failed to open data dir", zap.Error(err))
	}
	catalog, err := repository.LoadFileCatalog(local)
	if err != nil {
		logr.Fatal("failed to load fixtures", zap.Error(err))
	}

	goals := repository.NewGoalRepository(db)
	var goalsCreated int
	for _, goal := range catalog.Goals() {
		created, err := goals.CreateIfMissing(ctx, goal)
		if err != nil {
			logr.Fatal("failed to seed goal", zap.String("goal", goal.ID), zap.Error(err))
		}
		if created {
			goalsCreated++
		}
	}

	teachers := repository.NewTeacherRepository(db)
	var teachersCreated int
	for _, teacher := range catalog.Teachers() {
		created, err := teachers.CreateIfMissing(ctx, teacher)
		if err != nil {
			logr.Fatal("failed to seed teacher", zap.Int("teacher_id", teacher.ID), zap.Error(err))
		}
		if created {
			teachersCreated++
		}
	}

	logr.Info("seed complete",
		zap.Int("goals_created", goalsCreated),
		zap.Int("goals_total", len(catalog.Goals())),
		zap.Int("teachers_created", teachersCreated),
		zap.Int("teachers_total", len(catalog.Teachers())),
	)
}
