package service

import (
	"context"
	"fmt"
	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/analyzer/repository"
	"golang-portfolio-analyzer/internal/scoring"
	"golang-portfolio-analyzer/pkg/logger"
	"golang-portfolio-analyzer/pkg/telegram"
	"golang-portfolio-analyzer/pkg/utils"
	"sort"
	"sync"
	"time"
)

// BatchScorerService scores the whole portfolio with bounded concurrency and
// builds the aggregate report.
type BatchScorerService interface {
	ScoreAll(ctx context.Context, profile string) (*dto.PortfolioReport, error)
	BuildReport(ctx context.Context, profile string) (*dto.PortfolioReport, error)
}

type batchScorerService struct {
	cfg          *config.Config
	log          *logger.Logger
	scorer       ScorerService
	artifactRepo repository.ArtifactRepository
	telegramBot  telegram.Notifier

	// keyLocks serializes concurrent scoring of the same holding key.
	keyLocks sync.Map
}

func NewBatchScorerService(cfg *config.Config, log *logger.Logger,
	scorer ScorerService,
	artifactRepo repository.ArtifactRepository,
	telegramBot telegram.Notifier) BatchScorerService {
	return &batchScorerService{
		cfg:          cfg,
		log:          log,
		scorer:       scorer,
		artifactRepo: artifactRepo,
		telegramBot:  telegramBot,
	}
}

// ScoreAll fans the holdings out over a bounded worker pool. One failed
// holding never aborts the batch; failures are collected and reported.
func (s *batchScorerService) ScoreAll(ctx context.Context, profile string) (*dto.PortfolioReport, error) {
	hs, err := s.artifactRepo.LoadHoldings(ctx)
	if err != nil {
		return nil, err
	}
	if len(hs) == 0 {
		return nil, fmt.Errorf("holdings file is empty")
	}

	start := time.Now()
	var (
		mu      sync.Mutex
		scored  []dto.ScoredStock
		failed  []string
		wg      sync.WaitGroup
		workers = make(chan struct{}, s.cfg.Analyzer.MaxConcurrentTasks)
	)

	for i := range hs {
		holding := hs[i]
		wg.Add(1)
		workers <- struct{}{}
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-workers }()

			unlock := s.lockKey(holding.Key())
			defer unlock()

			result, err := s.scorer.Score(ctx, holding.Symbol, holding.Broker, profile)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.ErrorContext(ctx, "Failed to score holding",
					logger.StringField("key", holding.Key()), logger.ErrorField(err))
				failed = append(failed, fmt.Sprintf("%s: %v", holding.Key(), err))
				return
			}
			scored = append(scored, *result)
		})
	}
	wg.Wait()

	sort.Strings(failed)
	report := s.assembleReport(profile, scored)
	report.Failed = failed
	s.log.InfoContext(ctx, "Batch scoring finished",
		logger.IntField("scored", len(scored)),
		logger.IntField("failed", len(failed)),
		logger.StringField("elapsed", time.Since(start).Round(time.Second).String()),
	)

	s.notify(ctx, report, failed)
	return report, nil
}

// lockKey takes the per-key mutex and returns its unlock.
func (s *batchScorerService) lockKey(key string) func() {
	actual, _ := s.keyLocks.LoadOrStore(key, &sync.Mutex{})
	m := actual.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// BuildReport assembles the portfolio view from scores already on disk
// without rescoring anything.
func (s *batchScorerService) BuildReport(ctx context.Context, profile string) (*dto.PortfolioReport, error) {
	scores, err := s.artifactRepo.LoadAllScores(ctx)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no scores found, run score-all first")
	}
	return s.assembleReport(profile, scores), nil
}

func (s *batchScorerService) assembleReport(profile string, scored []dto.ScoredStock) *dto.PortfolioReport {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].OverallScore != scored[j].OverallScore {
			return scored[i].OverallScore > scored[j].OverallScore
		}
		return scored[i].Symbol < scored[j].Symbol
	})

	report := &dto.PortfolioReport{
		GeneratedAt:  utils.TimeNowIST().Format(time.RFC3339),
		Profile:      profile,
		HoldingCount: len(scored),
		Holdings:     scored,
	}

	var (
		total    float64
		invested float64
		value    float64
		hasPnL   bool
	)
	for _, sc := range scored {
		total += sc.OverallScore
		if sc.Quantity > 0 && sc.AvgPrice > 0 && sc.CurrentPrice != nil {
			invested += sc.Quantity * sc.AvgPrice
			value += sc.Quantity * *sc.CurrentPrice
			hasPnL = true
		}
	}
	if len(scored) > 0 {
		report.AverageScore = scoring.Round1(total / float64(len(scored)))
		report.HealthLabel = scoring.PortfolioHealth(report.AverageScore)
	}
	if hasPnL {
		report.TotalInvested = utils.ToPointer(scoring.Round1(invested))
		report.TotalValue = utils.ToPointer(scoring.Round1(value))
	}
	return report
}

func (s *batchScorerService) notify(ctx context.Context, report *dto.PortfolioReport, failed []string) {
	var lines []telegram.BatchResultLine
	for _, sc := range report.Holdings {
		lines = append(lines, telegram.BatchResultLine{
			Symbol:         sc.Symbol,
			Broker:         sc.Broker,
			OverallScore:   sc.OverallScore,
			Recommendation: sc.Recommendation,
			Confidence:     sc.Confidence,
		})
	}
	msg := telegram.FormatBatchSummary(utils.TimeNowIST(), report.HealthLabel, lines, failed)
	if err := s.telegramBot.SendMessage(msg); err != nil {
		s.log.ErrorContext(ctx, "Failed to send batch summary", logger.ErrorField(err))
	}
}
