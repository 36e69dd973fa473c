package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cash-ai/internal/models"
	"cash-ai/internal/repository"
	"cash-ai/internal/service"
	"cash-ai/internal/utils"
	"cash-ai/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ProgressReader reads run progress, satisfied by *repository.ResultCache.
type ProgressReader interface {
	Progress(ctx context.Context, code string) (float64, error)
}

type PipelineHandler struct {
	runs     *service.RunService
	excel    *service.ExcelService
	queue    TaskEnqueuer
	progress ProgressReader
	logger   *logrus.Logger
}

func NewPipelineHandler(
	runs *service.RunService,
	excel *service.ExcelService,
	queue TaskEnqueuer,
	progress ProgressReader,
	logger *logrus.Logger,
) *PipelineHandler {
	return &PipelineHandler{
		runs:     runs,
		excel:    excel,
		queue:    queue,
		progress: progress,
		logger:   logger,
	}
}

func (h *PipelineHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// Run executes the pipeline synchronously and returns the report.
func (h *PipelineHandler) Run(c *fiber.Ctx) error {
	var req models.PipelineRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	resp, err := h.runs.Execute(c.UserContext(), &req)
	if err != nil {
		return h.pipelineError(c, err)
	}
	return c.JSON(resp)
}

// RunAsync stores the request as a queued run and hands it to the worker.
func (h *PipelineHandler) RunAsync(c *fiber.Ctx) error {
	if h.queue == nil || !h.runs.HasStore() {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background processing is not available (database or Redis not connected)", nil)
	}

	var req models.PipelineRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	ctx := c.UserContext()
	run, err := h.runs.Submit(ctx, &req)
	if err != nil {
		return h.pipelineError(c, err)
	}

	task, err := worker.NewReconcileTask(run.ID, run.RunCode)
	if err == nil {
		_, err = h.queue.Enqueue(task)
	}
	if err != nil {
		if ferr := h.runs.MarkFailed(ctx, run, err); ferr != nil {
			h.logger.WithError(ferr).WithField("run_code", run.RunCode).Error("Failed to mark run failed")
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue mapping run", err)
	}

	c.Status(fiber.StatusAccepted)
	return utils.SuccessResponse(c, "Mapping run queued", fiber.Map{
		"run_code": run.RunCode,
		"status":   run.Status,
	})
}

// Upload runs the pipeline on an input workbook with one sheet per section.
func (h *PipelineHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".xlsx" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx) are allowed", nil)
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", err)
	}
	defer src.Close()

	imported, err := h.excel.ParseInputWorkbook(src)
	if err != nil {
		return h.pipelineError(c, err)
	}

	req := imported.Request
	req.DraftText = c.FormValue("draft")
	req.CaseID = c.FormValue("ai_case_id")
	req.PostingPeriod = c.FormValue("postingPeriod")
	req.CSVDownloadName = c.FormValue("csvdownloadfilename")

	resp, err := h.runs.Execute(c.UserContext(), &req)
	if err != nil {
		return h.pipelineError(c, err)
	}

	h.logger.WithFields(logrus.Fields{
		"filename": file.Filename,
		"rows":     imported.TotalRows,
		"errors":   imported.ErrorCount,
		"run_code": resp.RunCode,
	}).Info("Workbook processed")

	return utils.SuccessResponse(c, "Workbook processed successfully", fiber.Map{
		"import":   imported,
		"pipeline": resp,
	})
}

// Template downloads an empty input workbook.
func (h *PipelineHandler) Template(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.excel.GenerateInputTemplate(nil, &buf); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}
	c.Attachment("pipeline_input_template.xlsx")
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

func (h *PipelineHandler) ListRuns(c *fiber.Ctx) error {
	if !h.runs.HasStore() {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Run history is not available (database not connected)", nil)
	}

	params := utils.GetPaginationParams(c)
	runs, total, err := h.runs.List(c.UserContext(), params.Limit, utils.GetOffset(params.Page, params.Limit))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve runs", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, total)
	return utils.PaginatedResponseBuilder(c, "Runs retrieved successfully", runs, pagination)
}

func (h *PipelineHandler) GetRun(c *fiber.Ctx) error {
	run, resp, err := h.lookup(c)
	if err != nil {
		return h.lookupError(c, err)
	}
	return utils.SuccessResponse(c, "Run retrieved successfully", fiber.Map{
		"run":    run,
		"result": resp,
	})
}

func (h *PipelineHandler) GetProgress(c *fiber.Ctx) error {
	if h.progress == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Progress tracking is not available (Redis not connected)", nil)
	}

	code := c.Params("code")
	percent, err := h.progress.Progress(c.UserContext(), code)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read progress", err)
	}
	if percent < 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No progress recorded for run", nil)
	}
	return utils.SuccessResponse(c, "Progress retrieved successfully", fiber.Map{
		"run_code": code,
		"progress": percent,
	})
}

// Export downloads a completed run as xlsx (default) or csv.
// encoding=sjis selects Shift_JIS for csv.
func (h *PipelineHandler) Export(c *fiber.Ctx) error {
	run, resp, err := h.lookup(c)
	if err != nil {
		return h.lookupError(c, err)
	}
	if resp == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, fmt.Sprintf("Run is %s, no report to export", run.Status), nil)
	}

	base := exportBaseName(resp.CSVDownloadName, run.RunCode)
	var buf bytes.Buffer
	switch format := strings.ToLower(c.Query("format", "xlsx")); format {
	case "xlsx":
		if err := h.excel.ExportReport(resp.Result, resp.Diagnostics, &buf); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export report", err)
		}
		c.Attachment(base + ".xlsx")
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	case "csv":
		sjis := strings.EqualFold(c.Query("encoding"), "sjis")
		if err := h.excel.ExportCSV(resp.Result, &buf, sjis); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export report", err)
		}
		c.Attachment(base + ".csv")
		if sjis {
			c.Set(fiber.HeaderContentType, "text/csv; charset=Shift_JIS")
		} else {
			c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		}
	default:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported export format: "+format, nil)
	}
	return c.Send(buf.Bytes())
}

var errNoRunStore = errors.New("run history is not available (database not connected)")

func (h *PipelineHandler) lookup(c *fiber.Ctx) (*models.MappingRun, *models.PipelineResponse, error) {
	if !h.runs.HasStore() {
		return nil, nil, errNoRunStore
	}
	return h.runs.Lookup(c.UserContext(), c.Params("code"))
}

func (h *PipelineHandler) lookupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errNoRunStore):
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Run history is not available", err)
	case errors.Is(err, repository.ErrRunNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Run not found", nil)
	}
	h.logger.WithError(err).Error("Run lookup failed")
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve run", err)
}

func (h *PipelineHandler) pipelineError(c *fiber.Ctx, err error) error {
	if service.IsValidationError(err) {
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Invalid pipeline input", err)
	}
	h.logger.WithError(err).Error("Pipeline run failed")
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Pipeline run failed", err)
}

func exportBaseName(requested, runCode string) string {
	name := strings.TrimSpace(filepath.Base(requested))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return runCode
	}
	return name
}
