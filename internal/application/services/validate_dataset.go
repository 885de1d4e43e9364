// Package services contains application use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dftest-dev/dftest/internal/application/dto"
	apperrors "github.com/dftest-dev/dftest/internal/application/errors"
	"github.com/dftest-dev/dftest/internal/application/ports"
	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/rules"
)

// ValidateDatasetUseCase orchestrates loading rules and data, running the
// engine and opening invalid rows.
// This is a pure application layer component that depends only on ports.
type ValidateDatasetUseCase struct {
	rulesLoader   ports.RulesLoader
	datasetLoader ports.DatasetLoader
	engineFactory ports.EngineFactory
	inspector     ports.RowInspector
	logger        *slog.Logger
}

// NewValidateDatasetUseCase creates the use case. inspector may be nil when
// rows are never opened.
func NewValidateDatasetUseCase(
	rulesLoader ports.RulesLoader,
	datasetLoader ports.DatasetLoader,
	engineFactory ports.EngineFactory,
	inspector ports.RowInspector,
	logger *slog.Logger,
) *ValidateDatasetUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ValidateDatasetUseCase{
		rulesLoader:   rulesLoader,
		datasetLoader: datasetLoader,
		engineFactory: engineFactory,
		inspector:     inspector,
		logger:        logger,
	}
}

// Execute runs the complete validation workflow.
func (uc *ValidateDatasetUseCase) Execute(ctx context.Context, req dto.ValidateDatasetRequest) (*dto.ValidateDatasetResponse, error) {
	startTime := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// 1. Rules
	uc.logger.Info("loading rules", "path", req.RulesPath)
	cfg, err := uc.loadRules(req.RulesPath)
	if err != nil {
		return nil, err
	}

	// 2. Dataset
	uc.logger.Info("loading dataset", "path", req.DatasetPath)
	ds, err := uc.datasetLoader.Load(ctx, req.DatasetPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("dataset", "failed to load dataset", err)
	}
	uc.logger.Info("dataset loaded", "rows", ds.RowCount(), "columns", len(ds.Columns()))

	// 3. Evaluate
	eng := uc.engineFactory.CreateEngine(ds, cfg, req.Execution)
	res, err := eng.Run(ctx)
	if err != nil {
		return nil, err
	}

	// 4. Open invalid rows
	warnings := uc.openInvalidRows(ctx, res, req.Options)

	return &dto.ValidateDatasetResponse{
		Results: res,
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
		Diagnostics: dto.Diagnostics{
			Warnings: warnings,
		},
	}, nil
}

func validateRequest(req dto.ValidateDatasetRequest) error {
	var details []string
	if req.DatasetPath == "" {
		details = append(details, "dataset path is required")
	}
	if req.RulesPath == "" {
		details = append(details, "rules path is required")
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("request", details[0], details...)
	}
	return nil
}

func (uc *ValidateDatasetUseCase) loadRules(path string) (*rules.Config, error) {
	cfg, err := uc.rulesLoader.Load(path)
	if err == nil {
		uc.logger.Info("rules loaded", "columns", len(cfg.Columns()), "tests", cfg.Len())
		return cfg, nil
	}

	var cfgErr *apperrors.ConfigError
	if errors.As(err, &cfgErr) {
		return nil, err
	}
	return nil, apperrors.NewConfigurationError("rules", "failed to load rules", err)
}

// openInvalidRows exports and opens the invalid rows of each requested column.
// Failures here never fail the run; they come back as warnings.
func (uc *ValidateDatasetUseCase) openInvalidRows(ctx context.Context, res *results.Results, opts dto.ValidateOptions) []string {
	if len(opts.OpenColumns) == 0 {
		return nil
	}
	if uc.inspector == nil {
		return []string{"no row inspector configured; invalid rows were not opened"}
	}

	var warnings []string
	for _, column := range opts.OpenColumns {
		col, err := res.ColumnResults(column)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if col.Counts().Invalid == 0 {
			uc.logger.Info("no invalid rows to open", "column", column)
			continue
		}
		if err := col.OpenInvalidRows(ctx, uc.inspector, opts.IncludeColumns...); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to open invalid rows of %q: %v", column, err))
			continue
		}
		uc.logger.Info("invalid rows opened", "column", column, "rows", col.Counts().Invalid)
	}

	for _, w := range warnings {
		uc.logger.Warn(w)
	}
	return warnings
}
