package router

import (
	"cash-ai/internal/handler"

	"github.com/gofiber/fiber/v2"
)

func SetupAPIRoutes(router fiber.Router, h *handler.PipelineHandler) {
	// Pipeline routes
	pipeline := router.Group("/pipeline")
	pipeline.Post("/", h.Run)
	pipeline.Post("/async", h.RunAsync)
	pipeline.Post("/upload", h.Upload)
	pipeline.Get("/template", h.Template)

	// Run history routes
	runs := router.Group("/runs")
	runs.Get("/", h.ListRuns)
	runs.Get("/:code", h.GetRun)
	runs.Get("/:code/progress", h.GetProgress)
	runs.Get("/:code/export", h.Export)
}
