package router

import (
	"context"

	"cash-ai/internal/config"
	"cash-ai/internal/handler"
	"cash-ai/internal/middleware"
	"cash-ai/internal/repository"
	"cash-ai/internal/service"
	"cash-ai/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Setup wires the pipeline routes. db and redis may be nil, in which case
// run history and background processing are unavailable.
func Setup(ctx context.Context, app *fiber.App, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	logger := utils.GetLogger()

	var runs service.RunStore
	if db != nil {
		runs = repository.NewRunRepository(db)
	}

	var (
		cache    service.ResultCache
		progress handler.ProgressReader
		queue    handler.TaskEnqueuer
	)
	if redis != nil {
		resultCache := repository.NewResultCache(redis, cfg.ResultCacheTTL)
		cache = resultCache
		progress = resultCache
		queue = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	pipeline := service.NewPipeline(service.NewDrafter(ctx, cfg, logger), logger)
	runService := service.NewRunService(pipeline, runs, cache, service.NewArtifactWriter(cfg.ArtifactPath), logger)
	pipelineHandler := handler.NewPipelineHandler(runService, service.NewExcelService(), queue, progress, logger)

	// Health check
	app.Get("/health", pipelineHandler.Health)

	auth := middleware.APIAuth(cfg)
	app.Post("/v1/pipeline", auth, pipelineHandler.Run)

	// API routes (JSON)
	api := app.Group("/api/v1", auth)
	SetupAPIRoutes(api, pipelineHandler)
}
