package services

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/screening-service/internal/imaging"
	"github.com/SAP-F-2025/screening-service/internal/models"
)

// ScanService classifies uploaded brain scans through the analysis backend.
type ScanService interface {
	Analyze(ctx context.Context, filename string, content io.Reader) (*models.ScanAnalysis, error)
}

type scanService struct {
	analyzer imaging.Analyzer
	logger   *slog.Logger
}

func NewScanService(analyzer imaging.Analyzer, logger *slog.Logger) ScanService {
	if analyzer == nil {
		analyzer = imaging.Disabled{}
	}
	return &scanService{
		analyzer: analyzer,
		logger:   logger.With("service", "scan"),
	}
}

func (s *scanService) Analyze(ctx context.Context, filename string, content io.Reader) (*models.ScanAnalysis, error) {
	result, err := s.analyzer.Analyze(ctx, filename, content)
	switch {
	case err == nil:
		scanAnalyses.WithLabelValues("ok").Inc()
		s.logger.Info("Scan analyzed", "filename", filename, "stage", result.Stage)
		return result, nil
	case errors.Is(err, imaging.ErrEmptyScan):
		scanAnalyses.WithLabelValues("rejected").Inc()
		return nil, ValidationErrors{{Field: "file", Message: "must not be empty", Rule: "required"}}
	case errors.Is(err, imaging.ErrAnalyzerDisabled):
		scanAnalyses.WithLabelValues("disabled").Inc()
		return nil, err
	default:
		scanAnalyses.WithLabelValues("error").Inc()
		s.logger.Error("Scan analysis failed", "filename", filename, "error", err)
		return nil, err
	}
}
