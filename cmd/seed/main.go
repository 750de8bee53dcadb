// Command seed loads a YAML streetlight inventory into the database.
//
//	seed -file streetlights.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"streetlight-map/internal/config"
	"streetlight-map/internal/database"
	"streetlight-map/internal/logger"
	"streetlight-map/internal/models"
	"streetlight-map/internal/services"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type inventory struct {
	Streetlights []models.Streetlight `yaml:"streetlights"`
}

func main() {
	path := flag.String("file", "streetlights.yaml", "YAML inventory to load")
	flag.Parse()

	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	lights, skipped, err := readInventory(*path)
	if err != nil {
		logr.Fatal("failed to read inventory", zap.String("file", *path), zap.Error(err))
	}
	if skipped > 0 {
		logr.Warn("skipped invalid records", zap.Int("count", skipped))
	}

	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	n, err := services.NewStreetlightService(db).UpsertStreetlights(ctx, lights)
	if err != nil {
		logr.Fatal("failed to upsert streetlights", zap.Error(err))
	}
	logr.Info("streetlights loaded", zap.String("file", *path), zap.Int64("rows", n))
}

// readInventory parses the file and drops records that could not become
// map markers.
func readInventory(path string) ([]models.Streetlight, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var inv inventory
	if err := yaml.Unmarshal(raw, &inv); err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", path, err)
	}

	valid := make([]models.Streetlight, 0, len(inv.Streetlights))
	seen := make(map[string]struct{}, len(inv.Streetlights))
	skipped := 0
	for _, l := range inv.Streetlights {
		if _, err := models.NewMarker(l); err != nil {
			skipped++
			continue
		}
		if _, dup := seen[l.ID]; dup {
			skipped++
			continue
		}
		seen[l.ID] = struct{}{}
		valid = append(valid, l)
	}
	return valid, skipped, nil
}
