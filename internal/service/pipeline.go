package service

import (
	"context"
	"fmt"

	"cash-ai/internal/models"

	"github.com/sirupsen/logrus"
)

// PipelineResult is the outcome of one run.
type PipelineResult struct {
	Report      []models.ReportRow
	Draft       []models.ReportRow
	Diagnostics []models.Diagnostic
	Meta        models.RequestMeta
}

// Response shapes the result as the pipeline endpoint body.
func (r *PipelineResult) Response(runCode string) models.PipelineResponse {
	return models.PipelineResponse{
		OK:          true,
		RunCode:     runCode,
		Result:      r.Report,
		Output:      r.Draft,
		Diagnostics: r.Diagnostics,
		RequestMeta: r.Meta,
	}
}

// Pipeline runs draft, manufacturing rebuild, reconciliation, ratios and
// assembly in that fixed order. It keeps no state between runs.
type Pipeline struct {
	drafter      Drafter
	manufacturer *ManufacturingResolver
	reconciler   *Reconciler
	logger       *logrus.Logger
}

func NewPipeline(drafter Drafter, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		drafter:      drafter,
		manufacturer: NewManufacturingResolver(logger),
		reconciler:   NewReconciler(logger),
		logger:       logger,
	}
}

// Run executes the pipeline for one request. A draft supplied in the request
// takes the place of the configured drafter.
func (p *Pipeline) Run(ctx context.Context, req *models.PipelineRequest) (*PipelineResult, error) {
	ledger, diags, err := BuildLedger(req, p.logger)
	if err != nil {
		return nil, err
	}

	drafter := p.drafter
	if req.DraftText != "" {
		drafter = TextDrafter{Text: req.DraftText}
	}
	if drafter == nil {
		return nil, NewValidationError("no classifier draft available")
	}

	draft, err := drafter.Draft(ctx, ledger)
	if err != nil {
		if IsValidationError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to build draft: %w", err)
	}
	if draft == nil || draft.Len() == 0 {
		return nil, NewValidationError("classifier draft is empty")
	}

	work := draft.Clone()
	manufactured := p.manufacturer.Resolve(ledger, work)
	diags = append(diags, p.reconciler.Reconcile(ledger, work)...)
	ApplyRatios(work)

	mfgRows := make([]int, len(manufactured))
	for i, row := range manufactured {
		mfgRows[i] = row.No
	}
	report, err := Assemble(work.Select(mfgRows), work.Rows(), draft.Rows())
	if err != nil {
		return nil, err
	}

	if diags == nil {
		diags = []models.Diagnostic{}
	}
	p.logger.WithFields(logrus.Fields{
		"case_id":     req.CaseID,
		"records":     ledger.Len(),
		"diagnostics": len(diags),
	}).Info("Pipeline run completed")

	return &PipelineResult{
		Report:      report,
		Draft:       draft.Rows(),
		Diagnostics: diags,
		Meta:        req.RequestMeta,
	}, nil
}
