package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-shopassist-be/internal/config"
	"ai-shopassist-be/internal/controller"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/internal/repository/redisstore"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/internal/service"
	"ai-shopassist-be/internal/settings"
	"ai-shopassist-be/pkg/crawler"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/extractor"
	pdfextractor "ai-shopassist-be/pkg/extractor/pdf"
	pktNats "ai-shopassist-be/pkg/nats"
	"ai-shopassist-be/pkg/rag/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	EmbeddingController controller.IEmbeddingController
	CrawlController     controller.ICrawlController
	PdfController       controller.IPdfController
	SearchController    controller.ISearchController
	LogController       controller.ILogController
	AdminGuard          fiber.Handler

	// Started by cmd/rest once the server is built.
	ConsumerService     service.IConsumerService
	ContentEventService *service.ContentEventService
	IngestionService    service.IIngestionService
	Recoverers          []service.JobRecoverer

	Logger logger.ILogger

	// Backend in use per optional dependency, reported by /health.
	Components map[string]string

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{Components: map[string]string{}}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	var uowFactory unitofwork.RepositoryFactory
	if cfg.Database.VectorStore == "memory" {
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
		c.Components["vector_store"] = "memory"
		sysLogger.Warn("BOOT", "Using the in-memory store, data is lost on restart", nil)
	} else {
		if db == nil {
			return nil, fmt.Errorf("VECTOR_STORE=%s needs a database connection", cfg.Database.VectorStore)
		}
		uowFactory = unitofwork.NewRepositoryFactory(db)
		c.Components["vector_store"] = "postgres"
	}

	rdb, redisOK := connectRedis(ctx, cfg.App.RedisURL, sysLogger)
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	var protection contract.ProtectionRegistry
	if redisOK {
		protection = redisstore.NewProtectionRegistry(rdb)
		c.Components["protection"] = "redis"
	} else {
		protection = memory.NewProtectionRegistry()
		c.Components["protection"] = "memory"
	}

	staticSource, err := settings.NewStaticSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	var source settings.Source = staticSource
	if cfg.Settings.Source == "redis" {
		source = settings.NewRedisSource(rdb, cfg.Settings.RedisKey, staticSource)
	}
	c.Components["settings"] = cfg.Settings.Source
	settingsProvider, err := settings.NewProvider(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// In-process job queue; the worker drains it from cmd/rest.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var jobEvents service.EventPublisher
	var natsSub *pktNats.Subscriber
	c.Components["events"] = "disabled"
	if nc, err := pktNats.Connect(cfg.App.NatsURL); err != nil {
		sysLogger.Warn("BOOT", "NATS unavailable, CMS events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, nc.Close)
		jobEvents, natsSub = natsClients(ctx, nc, sysLogger)
		if natsSub != nil {
			c.closers = append(c.closers, natsSub.Close)
			c.Components["events"] = "nats"
		}
	}

	embeddingProvider := newEmbeddingProvider(cfg, settingsProvider)
	c.Components["embedding"] = cfg.Embedding.Provider
	sysLogger.Info("BOOT", "Embedding provider selected", map[string]interface{}{
		"provider": cfg.Embedding.Provider,
		"model":    cfg.Embedding.Model,
	})

	vectorStore := service.NewVectorStoreService(uowFactory, embeddingProvider, sysLogger)
	ingestionService := service.NewIngestionService(
		uowFactory,
		vectorStore,
		extractor.NewRegistry(),
		settingsProvider,
		sysLogger,
	)
	c.IngestionService = ingestionService

	publisherService := service.NewPublisherService(cfg.App.JobsTopic, pubSub)
	webCrawler := crawler.New(crawler.Config{
		RequestDelay: time.Duration(cfg.Crawl.RequestDelayMs) * time.Millisecond,
		FetchTimeout: time.Duration(cfg.Crawl.FetchTimeoutSeconds) * time.Second,
		UserAgent:    cfg.Crawl.UserAgent,
	})
	staleAfter := time.Duration(cfg.Ingest.StaleJobMinutes) * time.Minute
	crawlService := service.NewCrawlService(
		uowFactory,
		vectorStore,
		webCrawler,
		protection,
		publisherService,
		jobEvents,
		settingsProvider,
		staleAfter,
		sysLogger,
	)
	pdfService := service.NewPdfService(
		uowFactory,
		vectorStore,
		pdfextractor.NewExtractor(),
		publisherService,
		jobEvents,
		settingsProvider,
		cfg.Upload.Dir,
		staleAfter,
		sysLogger,
	)
	c.Recoverers = []service.JobRecoverer{crawlService, pdfService}

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.JobsTopic,
		map[entity.JobKind]service.JobRunner{
			entity.JobKindCrawl: crawlService,
			entity.JobKindPDF:   pdfService,
		},
		sysLogger,
	)

	orchestrator := search.NewOrchestrator(
		embeddingProvider,
		vectorStore,
		settingsProvider,
		memory.NewResultCache[search.Response](time.Duration(cfg.Retrieval.CacheTTLSeconds)*time.Second),
		sysLogger,
	)

	if natsSub != nil {
		c.ContentEventService = service.NewContentEventService(natsSub, ingestionService, sysLogger)
	}

	c.EmbeddingController = controller.NewEmbeddingController(ingestionService)
	c.CrawlController = controller.NewCrawlController(crawlService)
	c.PdfController = controller.NewPdfController(pdfService, cfg.Upload.MaxBytes)
	c.SearchController = controller.NewSearchController(service.NewSearchService(orchestrator))
	c.LogController = controller.NewLogController(service.NewLogService(sysLogger))
	c.AdminGuard = serverutils.AdminMiddleware(cfg.Auth.JWTSecret)

	return c, nil
}

// Close releases background connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func connectRedis(ctx context.Context, redisURL string, log logger.ILogger) (*redis.Client, bool) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("BOOT", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: redisURL}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("BOOT", "Redis unavailable, bot protection flags kept in memory", map[string]interface{}{"error": err.Error()})
		return rdb, false
	}
	return rdb, true
}

func natsClients(ctx context.Context, nc *nats.Conn, log logger.ILogger) (service.EventPublisher, *pktNats.Subscriber) {
	var publisher service.EventPublisher
	if pub, err := pktNats.NewPublisher(ctx, nc); err != nil {
		log.Warn("BOOT", "NATS publisher unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		publisher = pub
	}

	sub, err := pktNats.NewSubscriber(ctx, nc, log)
	if err != nil {
		log.Warn("BOOT", "NATS subscriber unavailable", map[string]interface{}{"error": err.Error()})
		return publisher, nil
	}
	return publisher, sub
}

func newEmbeddingProvider(cfg *config.Config, keys embedding.KeySource) embedding.EmbeddingProvider {
	timeout := time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second
	if cfg.Embedding.Provider == "ollama" {
		return embedding.NewOllamaProvider(cfg.Embedding.BaseURL, cfg.Embedding.Model, timeout)
	}
	return embedding.NewOpenAIProvider(keys, cfg.Embedding.BaseURL, cfg.Embedding.Model, timeout)
}
