package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/cognicore/noweats/internal/segment"
	"github.com/cognicore/noweats/pkg/noweats"
	"github.com/cognicore/noweats/pkg/noweats/config"
	"github.com/cognicore/noweats/pkg/noweats/store"
	"github.com/cognicore/noweats/pkg/noweats/store/sqlite"
)

func main() {
	var (
		lexiconPath  = flag.String("config", "", "Lexicon YAML file (required)")
		settingsPath = flag.String("settings", "", "Settings YAML file (optional)")
		dataDir      = flag.String("data", "", "Directory of collected segments (required)")
		prefix       = flag.String("prefix", "tweets", "Segment file prefix")
		dbPath       = flag.String("db", "", "Database path (required)")
		modelName    = flag.String("model", store.DefaultModel, "Name to store the model under")
	)
	flag.Parse()

	if *lexiconPath == "" {
		log.Fatal("--config required")
	}
	if *dataDir == "" {
		log.Fatal("--data required")
	}
	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	loader := config.Loader{LexiconPath: *lexiconPath, SettingsPath: *settingsPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}

	level, _ := components.Settings.Level()
	opts := noweats.OptionsFromComponents(components)
	opts.Store = st
	opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	engine, err := noweats.New(opts)
	if err != nil {
		log.Fatal("Failed to create engine: ", err)
	}
	defer engine.Close()

	msgs, err := segment.ReadClosed(*dataDir, *prefix, components.Settings.TargetLang)
	if err != nil {
		log.Fatal("Failed to read messages: ", err)
	}
	log.Printf("Loaded %d messages", len(msgs))

	model, err := engine.TrainModel(ctx, *modelName, msgs, components.Tokenizer)
	if err != nil {
		log.Fatal("Training failed: ", err)
	}
	f := model.Features()
	log.Printf("Stored model %q: %d prefixes, %d suffixes, %d bags", *modelName, len(f.Prefixes), len(f.Suffixes), len(f.Bags))
}
