package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"cash-ai/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RunStore persists mapping runs.
type RunStore interface {
	Create(ctx context.Context, run *models.MappingRun) error
	GetByID(ctx context.Context, id int64) (*models.MappingRun, error)
	GetByCode(ctx context.Context, code string) (*models.MappingRun, error)
	List(ctx context.Context, limit, offset int) ([]models.MappingRun, int64, error)
	UpdateStatus(ctx context.Context, id int64, status, message string) error
	SaveResult(ctx context.Context, id int64, resultJSON, diagnosticsJSON string) error
}

// ResultCache holds finished responses and progress by run code.
type ResultCache interface {
	Get(ctx context.Context, code string) (*models.PipelineResponse, error)
	Set(ctx context.Context, code string, resp *models.PipelineResponse) error
	SetProgress(ctx context.Context, code string, percent float64) error
}

// RunService wraps the pipeline with run history, caching and artifacts.
// Every collaborator except the pipeline is optional.
type RunService struct {
	pipeline  *Pipeline
	runs      RunStore
	cache     ResultCache
	artifacts *ArtifactWriter
	logger    *logrus.Logger
}

func NewRunService(pipeline *Pipeline, runs RunStore, cache ResultCache, artifacts *ArtifactWriter, logger *logrus.Logger) *RunService {
	return &RunService{
		pipeline:  pipeline,
		runs:      runs,
		cache:     cache,
		artifacts: artifacts,
		logger:    logger,
	}
}

// HasStore reports whether run history is available.
func (s *RunService) HasStore() bool {
	return s.runs != nil
}

// Execute runs the pipeline synchronously and records the run when a store
// is configured. Recording failures are logged, never returned.
func (s *RunService) Execute(ctx context.Context, req *models.PipelineRequest) (*models.PipelineResponse, error) {
	code := NewRunCode()
	res, err := s.pipeline.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := res.Response(code)

	if err := s.record(ctx, code, req, &resp); err != nil {
		s.logger.WithError(err).WithField("run_code", code).Warn("Failed to record pipeline run")
	}
	return &resp, nil
}

func (s *RunService) record(ctx context.Context, code string, req *models.PipelineRequest, resp *models.PipelineResponse) error {
	if s.runs == nil {
		if err := s.writeArtifacts(code, resp); err != nil {
			return err
		}
		s.publish(ctx, code, resp)
		return nil
	}

	run, err := s.newRun(code, req, models.RunStatusProcessing)
	if err != nil {
		return err
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return err
	}
	return s.complete(ctx, run, resp)
}

// Submit stores a queued run for the worker.
func (s *RunService) Submit(ctx context.Context, req *models.PipelineRequest) (*models.MappingRun, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run store is not configured")
	}
	if _, _, err := BuildLedger(req, s.logger); err != nil {
		return nil, err
	}
	if req.DraftText != "" {
		if _, err := ParseDraftText(req.DraftText); err != nil {
			return nil, err
		}
	}

	run, err := s.newRun(NewRunCode(), req, models.RunStatusQueued)
	if err != nil {
		return nil, err
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	s.progress(ctx, run.RunCode, 0)
	return run, nil
}

// MarkFailed records a terminal failure for a run.
func (s *RunService) MarkFailed(ctx context.Context, run *models.MappingRun, cause error) error {
	run.Status = models.RunStatusFailed
	return s.runs.UpdateStatus(ctx, run.ID, models.RunStatusFailed, cause.Error())
}

// Process executes a queued run. Finished runs are left untouched.
// Validation errors mark the run failed; other errors put it back in the
// queue state so a retry can pick it up.
func (s *RunService) Process(ctx context.Context, runID int64) error {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{"run_id": run.ID, "run_code": run.RunCode})
	if run.Status == models.RunStatusCompleted || run.Status == models.RunStatusFailed {
		log.Infof("Run is already %s, skipping processing", run.Status)
		return nil
	}

	if err := s.runs.UpdateStatus(ctx, run.ID, models.RunStatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	s.progress(ctx, run.RunCode, 10)

	var req models.PipelineRequest
	if err := json.Unmarshal([]byte(run.InputJSON), &req); err != nil {
		cause := NewValidationError("stored input is not valid JSON: %v", err)
		if ferr := s.MarkFailed(ctx, run, cause); ferr != nil {
			log.WithError(ferr).Error("Failed to mark run failed")
		}
		return cause
	}

	res, err := s.pipeline.Run(ctx, &req)
	if err != nil {
		if IsValidationError(err) {
			if ferr := s.MarkFailed(ctx, run, err); ferr != nil {
				log.WithError(ferr).Error("Failed to mark run failed")
			}
			return err
		}
		if uerr := s.runs.UpdateStatus(ctx, run.ID, models.RunStatusQueued, err.Error()); uerr != nil {
			log.WithError(uerr).Error("Failed to requeue run")
		}
		return err
	}
	s.progress(ctx, run.RunCode, 80)

	resp := res.Response(run.RunCode)
	if err := s.complete(ctx, run, &resp); err != nil {
		return err
	}
	log.WithField("diagnostics", len(resp.Diagnostics)).Info("Run completed")
	return nil
}

// Lookup returns the run and, once completed, its response.
func (s *RunService) Lookup(ctx context.Context, code string) (*models.MappingRun, *models.PipelineResponse, error) {
	if s.runs == nil {
		return nil, nil, fmt.Errorf("run store is not configured")
	}

	run, err := s.runs.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if run.Status != models.RunStatusCompleted {
		return run, nil, nil
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.WithError(err).WithField("run_code", code).Warn("Result cache read failed")
		}
		if cached != nil {
			return run, cached, nil
		}
	}

	if !run.ResultJSON.Valid {
		return run, nil, fmt.Errorf("run %s is completed but has no stored result", code)
	}
	var resp models.PipelineResponse
	if err := json.Unmarshal([]byte(run.ResultJSON.String), &resp); err != nil {
		return run, nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, code, &resp); err != nil {
			s.logger.WithError(err).WithField("run_code", code).Warn("Result cache write failed")
		}
	}
	return run, &resp, nil
}

func (s *RunService) List(ctx context.Context, limit, offset int) ([]models.MappingRun, int64, error) {
	if s.runs == nil {
		return nil, 0, fmt.Errorf("run store is not configured")
	}
	return s.runs.List(ctx, limit, offset)
}

func (s *RunService) newRun(code string, req *models.PipelineRequest, status string) (*models.MappingRun, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return &models.MappingRun{
		RunCode:   code,
		CaseID:    req.CaseID,
		Status:    status,
		InputJSON: string(input),
	}, nil
}

// complete writes artifacts before the database so a completed run always
// has its files on disk.
func (s *RunService) complete(ctx context.Context, run *models.MappingRun, resp *models.PipelineResponse) error {
	if err := s.writeArtifacts(run.RunCode, resp); err != nil {
		return err
	}

	result, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	diags, err := json.Marshal(resp.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	if err := s.runs.SaveResult(ctx, run.ID, string(result), string(diags)); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	run.Status = models.RunStatusCompleted

	s.publish(ctx, run.RunCode, resp)
	return nil
}

func (s *RunService) writeArtifacts(code string, resp *models.PipelineResponse) error {
	if s.artifacts == nil {
		return nil
	}
	if err := s.artifacts.WriteJSON(path.Join(code, "draft.json"), resp.Output); err != nil {
		return fmt.Errorf("failed to write draft artifact: %w", err)
	}
	if err := s.artifacts.WriteJSON(path.Join(code, "report.json"), resp.Result); err != nil {
		return fmt.Errorf("failed to write report artifact: %w", err)
	}
	return nil
}

func (s *RunService) publish(ctx context.Context, code string, resp *models.PipelineResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, code, resp); err != nil {
		s.logger.WithError(err).WithField("run_code", code).Warn("Result cache write failed")
	}
	s.progress(ctx, code, 100)
}

func (s *RunService) progress(ctx context.Context, code string, percent float64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProgress(ctx, code, percent); err != nil {
		s.logger.WithError(err).WithField("run_code", code).Debug("Progress update failed")
	}
}

// NewRunCode returns a fresh run identifier.
func NewRunCode() string {
	return fmt.Sprintf("RUN-%s", uuid.New().String())
}
