package service

import (
	"context"
	"encoding/json"
	"fmt"
	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/analyzer/repository"
	"golang-portfolio-analyzer/internal/entity"
	"golang-portfolio-analyzer/internal/holdings"
	"golang-portfolio-analyzer/internal/scoring"
	"golang-portfolio-analyzer/pkg/common"
	"golang-portfolio-analyzer/pkg/logger"
	"golang-portfolio-analyzer/pkg/telegram"
	"golang-portfolio-analyzer/pkg/utils"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScorerService aggregates the four analysis components into one scored
// record per holding and consumes score requests from the redis stream.
type ScorerService interface {
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
	Score(ctx context.Context, symbol, broker, profile string) (*dto.ScoredStock, error)
}

type scorerService struct {
	cfg             *config.Config
	log             *logger.Logger
	redisClient     *redis.Client
	scoringCfg      scoring.Config
	technicalSvc    TechnicalAnalysisService
	artifactRepo    repository.ArtifactRepository
	scoreRecordRepo repository.ScoreRecordRepository
	telegramBot     telegram.Notifier
}

// NewScorerService wires the scorer. scoreRecordRepo may be nil when no
// database is configured; score history then lives only on disk.
func NewScorerService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	technicalSvc TechnicalAnalysisService,
	artifactRepo repository.ArtifactRepository,
	scoreRecordRepo repository.ScoreRecordRepository,
	telegramBot telegram.Notifier) ScorerService {
	return &scorerService{
		cfg:             cfg,
		log:             log,
		redisClient:     redisClient,
		scoringCfg:      scoring.DefaultConfig(),
		technicalSvc:    technicalSvc,
		artifactRepo:    artifactRepo,
		scoreRecordRepo: scoreRecordRepo,
		telegramBot:     telegramBot,
	}
}

func (s *scorerService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamScoreRequest, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Context cancellation and redis.Nil are expected during shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	streamData, ok := s.decodeMessage(message.ID, message.Values)
	if !ok {
		return
	}

	s.log.Debug("Processing score request", logger.StringField("symbol", streamData.Symbol), logger.StringField("broker", streamData.Broker))

	if _, err := s.Score(ctx, streamData.Symbol, streamData.Broker, streamData.Profile); err != nil {
		s.log.Error("Failed to score stock", logger.ErrorField(err), logger.Field("message_id", message.ID), logger.StringField("symbol", streamData.Symbol))
		return
	}
	if err := s.AckNDel(ctx, common.RedisStreamScoreRequest, message.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete score request", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Debug("Score request processed successfully", logger.StringField("symbol", streamData.Symbol))
}

// decodeMessage extracts the JSON payload carried in the stream message.
func (s *scorerService) decodeMessage(messageID string, values map[string]interface{}) (dto.StreamDataScoreRequest, bool) {
	var streamData dto.StreamDataScoreRequest
	taskData, ok := values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", messageID))
		return streamData, false
	}
	if err := json.Unmarshal([]byte(taskData), &streamData); err != nil {
		s.log.Error("Failed to unmarshal score request", logger.ErrorField(err), logger.Field("message_id", messageID))
		return streamData, false
	}
	return streamData, true
}

// Score runs the full pipeline for one symbol: component loading, influence
// cap, weighted aggregation, gates and persistence. The holding record is
// optional; an unknown symbol is scored without position figures.
func (s *scorerService) Score(ctx context.Context, symbol, broker, profile string) (*dto.ScoredStock, error) {
	if profile == "" {
		profile = s.cfg.Analyzer.DefaultProfile
	}

	symbol = holdings.NormalizeSymbol(symbol)
	symbolYF := holdings.YFSymbol(symbol)
	holding := s.findHolding(ctx, symbol, broker)

	technical := s.artifactRepo.LoadTechnical(ctx, symbolYF)
	if technical == nil {
		computed, err := s.technicalSvc.Analyze(ctx, symbolYF)
		if err != nil {
			s.log.WarnContext(ctx, "Technical analysis unavailable, scoring without it",
				logger.StringField("symbol", symbolYF), logger.ErrorField(err))
		} else {
			technical = computed
		}
	}
	fundamentals := s.artifactRepo.LoadFundamental(ctx, symbolYF)
	news := s.artifactRepo.LoadNews(ctx, symbolYF)
	legal := s.artifactRepo.LoadLegal(ctx, symbolYF)

	input := buildScoringInput(technical, fundamentals, news, legal, profile)
	result, err := scoring.Evaluate(s.scoringCfg, input)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", symbol, err)
	}

	scored := s.buildScoredStock(symbol, symbolYF, broker, profile, holding, technical, fundamentals, news, legal, input, result)

	key := symbolYF
	if holding != nil {
		key = holding.Key()
	}
	if err := s.artifactRepo.SaveScore(ctx, key, scored); err != nil {
		return nil, fmt.Errorf("failed to save score for %s: %w", key, err)
	}
	if err := s.persistRecord(ctx, scored); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist score record", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	s.log.InfoContext(ctx, "Stock scored",
		logger.StringField("symbol", symbol),
		logger.Float64Field("overall_score", scored.OverallScore),
		logger.StringField("recommendation", scored.Recommendation),
		logger.StringField("confidence", scored.Confidence),
		logger.StringField("coverage", scored.Coverage),
	)
	return scored, nil
}

func (s *scorerService) findHolding(ctx context.Context, symbol, broker string) *holdings.Holding {
	hs, err := s.artifactRepo.LoadHoldings(ctx)
	if err != nil {
		return nil
	}
	for i := range hs {
		if hs[i].Symbol != symbol {
			continue
		}
		if broker == "" || hs[i].Broker == broker {
			return &hs[i]
		}
	}
	return nil
}

// buildScoringInput maps artifacts onto the scoring engine's input. A nil
// artifact or nil score field leaves that component missing.
func buildScoringInput(technical *dto.TechnicalArtifact, fundamentals *dto.FundamentalArtifact,
	news *dto.NewsArtifact, legal *dto.LegalArtifact, profile string) scoring.Input {
	input := scoring.Input{Profile: profile}

	if technical != nil {
		input.Components.Technical = scoring.ValidScore(technical.TechnicalScore)
		input.Trend = scoring.ValidScore(float64(technical.Scores.Trend))
		input.MACD = scoring.ValidScore(float64(technical.Scores.MACD))
		input.ADX = scoring.ValidScore(float64(technical.Scores.ADX))
		input.Volume = scoring.ValidScore(float64(technical.Scores.Volume))
	}
	if fundamentals != nil && fundamentals.FundamentalScore != nil {
		input.Components.Fundamental = scoring.ValidScore(*fundamentals.FundamentalScore)
	}
	if news != nil && news.NewsSentimentScore != nil {
		input.Components.News = scoring.ValidScore(*news.NewsSentimentScore)
	}
	if legal != nil {
		if legal.LegalCorporateScore != nil {
			input.Components.Legal = scoring.ValidScore(*legal.LegalCorporateScore)
		}
		input.HasSevereRedFlag = legal.HasSevereRedFlag
		input.RedFlags = legal.RedFlags
	}
	return input
}

func (s *scorerService) buildScoredStock(symbol, symbolYF, broker, profile string,
	holding *holdings.Holding,
	technical *dto.TechnicalArtifact, fundamentals *dto.FundamentalArtifact,
	news *dto.NewsArtifact, legal *dto.LegalArtifact,
	input scoring.Input, result scoring.Result) *dto.ScoredStock {

	scored := &dto.ScoredStock{
		Symbol:         symbol,
		SymbolYF:       symbolYF,
		Broker:         broker,
		OverallScore:   result.OverallScore,
		Recommendation: result.Recommendation.String(),
		Confidence:     result.Confidence.String(),
		CoverageCount:  result.Coverage.Count,
		Coverage:       result.Coverage.Code,
		Profile:        profile,
		Summary:        BuildSummary(technical, fundamentals, news, legal),
		AnalyzedAt:     utils.TimeNowIST().Format(time.RFC3339),
	}
	for _, flag := range result.GateFlags {
		scored.GateFlags = append(scored.GateFlags, string(flag))
	}
	if scored.GateFlags == nil {
		scored.GateFlags = []string{}
	}

	scored.TechnicalScore = input.Components.Technical.Ptr()
	scored.FundamentalScore = input.Components.Fundamental.Ptr()
	scored.NewsSentimentScore = input.Components.News.Ptr()
	scored.LegalCorporateScore = input.Components.Legal.Ptr()
	if legal != nil {
		scored.RedFlags = legal.RedFlags
	}

	if technical != nil {
		scored.CurrentPrice = utils.ToPointer(technical.Indicators.LatestClose)
	}
	if holding != nil {
		scored.Name = holding.Name
		scored.Quantity = holding.Quantity
		scored.AvgPrice = holding.AvgPrice
		if holding.Broker != "" {
			scored.Broker = holding.Broker
		}
		if scored.CurrentPrice != nil && holding.AvgPrice > 0 {
			pnl := (*scored.CurrentPrice - holding.AvgPrice) / holding.AvgPrice * 100
			scored.PnLPct = utils.ToPointer(scoring.Round1(pnl))
		}
	}
	return scored
}

func (s *scorerService) persistRecord(ctx context.Context, scored *dto.ScoredStock) error {
	if s.scoreRecordRepo == nil {
		return nil
	}
	dataJSON, err := json.Marshal(scored)
	if err != nil {
		return err
	}
	return s.scoreRecordRepo.Create(ctx, &entity.ScoreRecord{
		Symbol:         scored.Symbol,
		Broker:         scored.Broker,
		Profile:        scored.Profile,
		OverallScore:   scored.OverallScore,
		Recommendation: scored.Recommendation,
		Confidence:     scored.Confidence,
		CoverageCount:  scored.CoverageCount,
		Data:           dataJSON,
	})
}

func (s *scorerService) AckNDel(ctx context.Context, streamName string, messageID string) error {
	if err := s.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.log.Error("Failed to acknowledge score request", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	if err := s.redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		s.log.Error("Failed to delete score request", logger.ErrorField(err), logger.Field("message_id", messageID))
		return err
	}
	return nil
}

func (s *scorerService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamScoreRequest,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Analyzer.RedisStreamScoreRequestMaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()

	if err != nil {
		s.log.Error("Failed to claim score request on retry", logger.ErrorField(err))
		return
	}

	if len(msgs) == 0 {
		s.log.Debug("Retry found no pending messages", logger.StringField("stream", common.RedisStreamScoreRequest))
		return
	}

	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamScoreRequest,
		Group:  common.RedisStreamGroup,
		Start:  msgs[0].ID,
		End:    msgs[0].ID,
		Count:  1,
	}).Result()

	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}

	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exists on xautoclaim",
			logger.StringField("stream", common.RedisStreamScoreRequest),
			logger.StringField("message_id", msgs[0].ID))
		return
	}

	msg := msgs[0]
	streamData, ok := s.decodeMessage(msg.ID, msg.Values)
	if !ok {
		return
	}

	if pendingInfo[0].RetryCount >= int64(s.cfg.Analyzer.RedisStreamScoreRequestMaxRetry) {
		s.log.Error("pending msg retry count exceeded",
			logger.StringField("stream", common.RedisStreamScoreRequest),
			logger.StringField("message_id", msg.ID),
			logger.StringField("symbol", streamData.Symbol),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)),
			logger.IntField("max_retry", s.cfg.Analyzer.RedisStreamScoreRequestMaxRetry),
		)
		msgTelegram := telegram.FormatErrorAlertMessage(utils.TimeNowIST(),
			fmt.Sprintf("Score request retry count exceeded for %s (broker %s)", streamData.Symbol, streamData.Broker))
		if err := s.telegramBot.SendMessage(msgTelegram); err != nil {
			s.log.Error("Failed to send telegram message for retry exceeded", logger.ErrorField(err), logger.StringField("symbol", streamData.Symbol))
		}
		if err := s.AckNDel(ctx, common.RedisStreamScoreRequest, msg.ID); err != nil {
			s.log.Error("Failed to acknowledge and delete score request", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		}
		return
	}

	if _, err := s.Score(ctx, streamData.Symbol, streamData.Broker, streamData.Profile); err != nil {
		s.log.Error("Failed to score stock on retry", logger.ErrorField(err), logger.Field("message_id", msg.ID), logger.StringField("symbol", streamData.Symbol))
		return
	}

	if err := s.AckNDel(ctx, common.RedisStreamScoreRequest, msg.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete score request", logger.ErrorField(err), logger.Field("message_id", msg.ID))
		return
	}
	s.log.Info("Retry score request processed successfully", logger.StringField("symbol", streamData.Symbol))
}
