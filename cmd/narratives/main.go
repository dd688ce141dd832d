package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/narrativelab/narratives/internal/captions"
	"github.com/narrativelab/narratives/internal/config"
	"github.com/narrativelab/narratives/internal/fetch"
	"github.com/narrativelab/narratives/internal/llm"
	"github.com/narrativelab/narratives/internal/pipeline"
	"github.com/narrativelab/narratives/internal/process"
	"github.com/narrativelab/narratives/internal/scrape"
	"github.com/narrativelab/narratives/internal/sentiment"
	"github.com/narrativelab/narratives/internal/store"
	"github.com/narrativelab/narratives/internal/summarize"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath string
		dbPath     string
		llmBaseURL string
		llmModel   string
		llmKey     string
		catchup    bool
		vader      bool
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "", "Path to optional YAML config file")
	flag.StringVar(&dbPath, "db", "", "Path to the SQLite library database")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", "", "Model name for summarization")
	flag.StringVar(&llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	flag.BoolVar(&catchup, "catchup", false, "Scrape and process every record with an empty transcript")
	flag.BoolVar(&vader, "sentiment.vader", false, "Score sentiment with VADER instead of the placeholder")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	// Flags win over environment and file.
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if llmBaseURL != "" {
		cfg.LLM.BaseURL = llmBaseURL
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmKey != "" {
		cfg.LLM.APIKey = llmKey
	}
	if vader {
		cfg.Sentiment.VADER = true
	}

	ids := flag.Args()
	if !catchup && len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "usage: narratives [flags] <content-id> [<content-id> ...]")
		fmt.Fprintln(os.Stderr, "       narratives [flags] -catchup")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(cfg, ids, catchup); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, ids []string, catchup bool) error {
	ctx := context.Background()

	s, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	fetcher := &fetch.Client{UserAgent: cfg.UserAgent}
	var scorer sentiment.Scorer = sentiment.Placeholder{}
	if cfg.Sentiment.VADER {
		scorer = sentiment.NewVADER()
	}
	engine := &summarize.Engine{
		Client: llm.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL),
		Model:  cfg.LLM.Model,
	}

	p := &pipeline.Pipeline{
		Store: s,
		Scrape: scrape.Deps{
			Fetcher:   fetcher,
			Captions:  &captions.TimedText{Fetcher: fetcher, Endpoint: cfg.Captions.Endpoint},
			Languages: cfg.Captions.Languages,
			Log:       log.Logger,
		},
		Registry: process.NewRegistry(engine, scorer),
		Log:      log.Logger,
	}

	if catchup {
		return p.CatchUp(ctx)
	}
	if len(ids) == 1 {
		err := p.Ingest(ctx, ids[0])
		if errors.Is(err, pipeline.ErrAlreadyExists) {
			log.Warn().Str("content_id", ids[0]).Msg("content id already exists")
			return nil
		}
		return err
	}
	p.IngestBatch(ctx, ids)
	return nil
}
