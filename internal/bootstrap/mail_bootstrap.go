// Package bootstrap wires configuration, adapters and services into the
// running application.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	mailhttp "github.com/ayla-solutions/mail-classification-api/adapter/in/http"
	"github.com/ayla-solutions/mail-classification-api/adapter/in/worker"
	"github.com/ayla-solutions/mail-classification-api/adapter/out/dataverse"
	"github.com/ayla-solutions/mail-classification-api/adapter/out/dedup"
	"github.com/ayla-solutions/mail-classification-api/adapter/out/llm"
	"github.com/ayla-solutions/mail-classification-api/adapter/out/memory"
	"github.com/ayla-solutions/mail-classification-api/adapter/out/postgres"
	"github.com/ayla-solutions/mail-classification-api/adapter/out/source"
	"github.com/ayla-solutions/mail-classification-api/config"
	"github.com/ayla-solutions/mail-classification-api/core/port/out"
	"github.com/ayla-solutions/mail-classification-api/core/service/classify"
	"github.com/ayla-solutions/mail-classification-api/core/service/extract"
	"github.com/ayla-solutions/mail-classification-api/core/service/ingest"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
	"github.com/ayla-solutions/mail-classification-api/pkg/logger"
)

// App bundles the HTTP server with the enrichment pool so both shut down
// together.
type App struct {
	Fiber *fiber.App
	Pool  *worker.Pool
}

// New builds the whole application from config.
func New(cfg *config.Config) (*App, func(), error) {
	logger.Init(logger.Config{
		Level:   cfg.LogLevel,
		Service: "mail-classification-api",
		Pretty:  cfg.IsDevelopment(),
	})

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	store, storeCleanup, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if storeCleanup != nil {
		cleanups = append(cleanups, storeCleanup)
	}

	var dedupFilter out.DedupFilter
	var dedupPinger mailhttp.Pinger
	if cfg.RedisURL != "" {
		filter, err := dedup.NewFilter(cfg.RedisURL, 24*time.Hour)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { _ = filter.Close() })
		dedupFilter = filter
		dedupPinger = filter
	}

	generator := llm.NewGenerator(llm.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
	})

	engine := extract.NewEngine(generator, extract.Config{
		ClassifierModel:  cfg.ClassifierModel,
		InvoiceModel:     cfg.InvoiceModel,
		RequestModel:     cfg.RequestModel,
		Temperature:      float32(cfg.LLMTemperature),
		MaxTokens:        cfg.LLMMaxTokens,
		InvoiceMaxTokens: cfg.InvoiceMaxTokens,
		ClassifyMaxChars: cfg.ClassifyMaxChars,
		ExtractMaxChars:  cfg.ExtractMaxChars,
		TicketPrefix:     cfg.TicketPrefix,
		CallTimeout:      cfg.LLMTimeout,
	})

	keyword := classify.NewKeywordClassifier(classify.WithUrgencyWords(cfg.UrgencyKeywords))

	processor := worker.NewEnrichProcessor(engine, keyword, store)
	pool := worker.NewPool(processor, &worker.PoolConfig{
		Workers:    cfg.EnrichmentWorkers,
		QueueSize:  cfg.WorkerQueueSize,
		BatchSize:  1,
		JobTimeout: 3*cfg.LLMTimeout + time.Minute,
	})
	if err := pool.Start(); err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, pool.Stop)

	ingestor := ingest.NewIngestor(store, dedupFilter, pool)

	msgSource, err := newSource(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "mail-classification-api",
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          mailhttp.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(mailhttp.RequestContext())

	mailhttp.NewHealthHandler(store.Driver(), cfg.EnrichmentWorkers, dedupPinger).Register(app)
	mailhttp.NewMailHandler(msgSource, ingestor).Register(app)

	log.Info().
		Str("store", store.Driver()).
		Int("workers", cfg.EnrichmentWorkers).
		Msg("application wired")

	return &App{Fiber: app, Pool: pool}, cleanup, nil
}

// newStore selects the record store backend.
func newStore(cfg *config.Config) (out.RecordStore, func(), error) {
	switch cfg.StoreDriver {
	case "dataverse":
		if cfg.DataverseResource == "" || cfg.DataverseTable == "" {
			return nil, nil, apperr.ConfigError("dataverse store requires DATAVERSE_RESOURCE and DATAVERSE_TABLE")
		}
		store := dataverse.NewStore(dataverse.Config{
			Resource:     cfg.DataverseResource,
			Table:        cfg.DataverseTable,
			PrimaryID:    cfg.DataversePrimaryID,
			TenantID:     cfg.DataverseTenantID,
			ClientID:     cfg.DataverseClientID,
			ClientSecret: cfg.DataverseClientSecret,
		})
		return store, nil, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, apperr.ConfigError("postgres store requires DATABASE_URL")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "memory":
		return memory.NewStore(), nil, nil
	default:
		return nil, nil, apperr.ConfigError(fmt.Sprintf("unknown store driver: %s", cfg.StoreDriver))
	}
}

// newSource selects the message source. A configured SOURCE_FILE feeds the
// pipeline locally; without one the upstream fetcher must be plugged in.
func newSource(cfg *config.Config) (out.MessageSource, error) {
	if cfg.SourceFile != "" {
		return source.NewFileSource(cfg.SourceFile), nil
	}
	return nil, apperr.ConfigError("no message source configured, set SOURCE_FILE")
}
