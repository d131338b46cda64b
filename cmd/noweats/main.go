package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/cognicore/noweats/internal/segment"
	"github.com/cognicore/noweats/pkg/noweats"
	"github.com/cognicore/noweats/pkg/noweats/config"
	"github.com/cognicore/noweats/pkg/noweats/ingest"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/store"
	"github.com/cognicore/noweats/pkg/noweats/store/sqlite"
)

func main() {
	var (
		lexiconPath  = flag.String("config", "", "Lexicon YAML file (required)")
		settingsPath = flag.String("settings", "", "Settings YAML file (optional, NOWEATS_* env otherwise)")
		dataDir      = flag.String("data", "", "Directory of collected segments")
		prefix       = flag.String("prefix", "tweets", "Segment file prefix")
		dataFile     = flag.String("file", "", "Single segment file (instead of --data)")
		dbPath       = flag.String("db", "", "Database path for runs and the language model (optional)")
		modelName    = flag.String("model", store.DefaultModel, "Stored language model name")
		noLM         = flag.Bool("no-lm", false, "Skip the language model filter")
		top          = flag.Int("top", 20, "Merged counts to print")
	)
	flag.Parse()

	if *lexiconPath == "" {
		log.Fatal("--config required")
	}
	if (*dataDir == "") == (*dataFile == "") {
		log.Fatal("exactly one of --data or --file required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := config.Loader{LexiconPath: *lexiconPath, SettingsPath: *settingsPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	level, _ := components.Settings.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := noweats.OptionsFromComponents(components)
	opts.Logger = logger

	if *dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.Fatal("Failed to open database: ", err)
		}
		opts.Store = st

		if !*noLM {
			scorer, err := noweats.LoadScorer(ctx, st, *modelName, components.Tokenizer)
			switch {
			case errors.Is(err, internalerr.ErrNotFound):
				log.Printf("No language model %q stored, skipping language filter", *modelName)
			case err != nil:
				log.Fatal("Failed to load language model: ", err)
			default:
				opts.Scorer = scorer
			}
		}
	}

	engine, err := noweats.New(opts)
	if err != nil {
		log.Fatal("Failed to create engine: ", err)
	}
	defer engine.Close()

	msgs, err := readMessages(*dataDir, *prefix, *dataFile, components.Settings.TargetLang)
	if err != nil {
		log.Fatal("Failed to read messages: ", err)
	}
	log.Printf("Loaded %d messages", len(msgs))

	report, err := engine.Run(ctx, msgs)
	if err != nil {
		log.Fatal("Run failed: ", err)
	}

	fmt.Printf("run %s\n\n", report.RunID)
	fmt.Println("Most common:")
	for i, e := range report.Top() {
		if i == *top {
			break
		}
		fmt.Printf("  %5d  %s\n", e.Count, e.Phrase)
	}
	fmt.Println("\nMost interesting:")
	for i, phrase := range report.Ranking {
		fmt.Printf("  %2d. %s\n", i+1, phrase)
	}
}

func readMessages(dir, prefix, file, lang string) ([]ingest.Message, error) {
	if file != "" {
		return segment.ReadFile(file, lang)
	}
	return segment.ReadClosed(dir, prefix, lang)
}
