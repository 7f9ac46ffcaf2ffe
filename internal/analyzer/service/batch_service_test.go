package service

import (
	"context"
	"path/filepath"
	"testing"

	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/analyzer/repository"
	"golang-portfolio-analyzer/internal/holdings"
	"golang-portfolio-analyzer/pkg/logger"
	"golang-portfolio-analyzer/pkg/telegram"
	"golang-portfolio-analyzer/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatchFixture(t *testing.T) (BatchScorerService, repository.ArtifactRepository) {
	t.Helper()
	dir := t.TempDir()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Analyzer.DataDir = filepath.Join(dir, "data")
	cfg.Analyzer.CacheDir = filepath.Join(dir, "cache")
	cfg.Analyzer.MaxConcurrentTasks = 2

	repo, err := repository.NewArtifactRepository(cfg, log)
	require.NoError(t, err)

	notifier, err := telegram.NewClient("", 0)
	require.NoError(t, err)

	scorer := NewScorerService(cfg, log, nil, stubTechnicalService{}, repo, nil, notifier)
	return NewBatchScorerService(cfg, log, scorer, repo, notifier), repo
}

func TestBatchScorerService_BuildReport(t *testing.T) {
	batch, repo := newBatchFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveScore(ctx, "TCS", &dto.ScoredStock{
		Symbol: "TCS", OverallScore: 8.0, Recommendation: "STRONG BUY",
		Quantity: 5, AvgPrice: 3000, CurrentPrice: utils.ToPointer(3600.0),
	}))
	require.NoError(t, repo.SaveScore(ctx, "IDEA", &dto.ScoredStock{
		Symbol: "IDEA", OverallScore: 3.0, Recommendation: "SELL",
		Quantity: 100, AvgPrice: 12, CurrentPrice: utils.ToPointer(8.0),
	}))

	report, err := batch.BuildReport(ctx, "default")
	require.NoError(t, err)

	assert.Equal(t, 2, report.HoldingCount)
	// (8.0 + 3.0) / 2
	assert.Equal(t, 5.5, report.AverageScore)
	assert.Equal(t, "Fair", report.HealthLabel)

	// Holdings sorted by score descending.
	require.Len(t, report.Holdings, 2)
	assert.Equal(t, "TCS", report.Holdings[0].Symbol)

	// 5*3000 + 100*12 invested, 5*3600 + 100*8 current.
	require.NotNil(t, report.TotalInvested)
	assert.Equal(t, 16200.0, *report.TotalInvested)
	require.NotNil(t, report.TotalValue)
	assert.Equal(t, 18800.0, *report.TotalValue)
}

func TestBatchScorerService_ScoreAllReportsFailures(t *testing.T) {
	batch, repo := newBatchFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveHoldings(ctx, []holdings.Holding{
		{Symbol: "TCS", SymbolYF: "TCS.NS", Broker: "zerodha", Quantity: 5, AvgPrice: 3000},
		{Symbol: "IDEA", SymbolYF: "IDEA.NS", Broker: "zerodha", Quantity: 100, AvgPrice: 12},
	}))

	// An unknown profile fails every holding without aborting the batch.
	report, err := batch.ScoreAll(ctx, "no-such-profile")
	require.NoError(t, err)

	assert.Equal(t, 0, report.HoldingCount)
	require.Len(t, report.Failed, 2)
	assert.Contains(t, report.Failed[0], "IDEA@zerodha")
	assert.Contains(t, report.Failed[1], "TCS@zerodha")
}

func TestBatchScorerService_BuildReportEmpty(t *testing.T) {
	batch, _ := newBatchFixture(t)

	_, err := batch.BuildReport(context.Background(), "default")
	require.Error(t, err)
}
