package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/screening-service/internal/imaging"
	"github.com/SAP-F-2025/screening-service/internal/models"
)

type stubAnalyzer struct {
	result *models.ScanAnalysis
	err    error
}

func (s stubAnalyzer) Analyze(context.Context, string, io.Reader) (*models.ScanAnalysis, error) {
	return s.result, s.err
}

func TestScanService_Analyze(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	svc := NewScanService(stubAnalyzer{result: &models.ScanAnalysis{Stage: "Non Demented"}}, logger)
	got, err := svc.Analyze(ctx, "scan.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "Non Demented", got.Stage)

	svc = NewScanService(stubAnalyzer{err: imaging.ErrEmptyScan}, logger)
	_, err = svc.Analyze(ctx, "scan.png", strings.NewReader(""))
	assert.True(t, IsValidation(err))

	svc = NewScanService(nil, logger)
	_, err = svc.Analyze(ctx, "scan.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, imaging.ErrAnalyzerDisabled)

	boom := errors.New("connection refused")
	svc = NewScanService(stubAnalyzer{err: boom}, logger)
	_, err = svc.Analyze(ctx, "scan.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, boom)
}
