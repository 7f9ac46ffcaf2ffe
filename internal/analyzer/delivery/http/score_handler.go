package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/analyzer/repository"
	"golang-portfolio-analyzer/internal/analyzer/service"
	"golang-portfolio-analyzer/pkg/common"
	"golang-portfolio-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// ScoreHandler exposes the scoring results and accepts score requests.
type ScoreHandler struct {
	artifactRepo    repository.ArtifactRepository
	scoreRecordRepo repository.ScoreRecordRepository
	batchService    service.BatchScorerService
	redisClient     *redis.Client
	logger          *logger.Logger
}

// NewScoreHandler creates a new ScoreHandler. scoreRecordRepo may be nil when
// no database is configured; the history endpoint then returns 404.
func NewScoreHandler(artifactRepo repository.ArtifactRepository,
	scoreRecordRepo repository.ScoreRecordRepository,
	batchService service.BatchScorerService,
	redisClient *redis.Client,
	logger *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		artifactRepo:    artifactRepo,
		scoreRecordRepo: scoreRecordRepo,
		batchService:    batchService,
		redisClient:     redisClient,
		logger:          logger,
	}
}

// RegisterRoutes registers the score routes to the Echo group.
func (h *ScoreHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/scores", h.GetAllScores)
	g.GET("/scores/:key", h.GetScore)
	g.POST("/scores", h.EnqueueScoreRequest)
	g.GET("/report", h.GetReport)
	g.GET("/history/:symbol", h.GetHistory)
}

// GetAllScores returns every score currently on disk.
func (h *ScoreHandler) GetAllScores(c echo.Context) error {
	scores, err := h.artifactRepo.LoadAllScores(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to load scores", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load scores"})
	}
	return c.JSON(http.StatusOK, scores)
}

// GetScore returns one score by its holding key, e.g. RELIANCE@zerodha.
func (h *ScoreHandler) GetScore(c echo.Context) error {
	score := h.artifactRepo.LoadScore(c.Request().Context(), c.Param("key"))
	if score == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Score not found"})
	}
	return c.JSON(http.StatusOK, score)
}

// EnqueueScoreRequest publishes a score request onto the redis stream for
// the consumer to pick up.
func (h *ScoreHandler) EnqueueScoreRequest(c echo.Context) error {
	var req dto.StreamDataScoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	if req.Symbol == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "symbol is required"})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if err := h.redisClient.XAdd(c.Request().Context(), &redis.XAddArgs{
		Stream: common.RedisStreamScoreRequest,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err(); err != nil {
		h.logger.Error("Failed to enqueue score request", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue score request"})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued", "symbol": req.Symbol})
}

// GetReport assembles the portfolio report from the scores on disk.
func (h *ScoreHandler) GetReport(c echo.Context) error {
	report, err := h.batchService.BuildReport(c.Request().Context(), c.QueryParam("profile"))
	if err != nil {
		h.logger.Error("Failed to build report", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

// GetHistory returns the most recent persisted score records for a symbol.
func (h *ScoreHandler) GetHistory(c echo.Context) error {
	if h.scoreRecordRepo == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Score history requires a database"})
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	records, err := h.scoreRecordRepo.GetLatestBySymbol(c.Request().Context(), c.Param("symbol"), limit)
	if err != nil {
		h.logger.Error("Failed to load score history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load score history"})
	}
	return c.JSON(http.StatusOK, records)
}
