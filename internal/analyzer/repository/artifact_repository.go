package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/holdings"
	"golang-portfolio-analyzer/pkg/logger"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ArtifactRepository is the file-backed store for analysis artifacts,
// holdings and scoring results. A nil artifact from a Load method means the
// component is missing for that symbol; malformed files degrade to missing
// rather than failing the whole scoring run.
type ArtifactRepository interface {
	SaveHoldings(ctx context.Context, hs []holdings.Holding) error
	LoadHoldings(ctx context.Context) ([]holdings.Holding, error)

	SaveTechnical(ctx context.Context, artifact *dto.TechnicalArtifact) error
	LoadTechnical(ctx context.Context, symbolYF string) *dto.TechnicalArtifact
	LoadFundamental(ctx context.Context, symbolYF string) *dto.FundamentalArtifact
	LoadNews(ctx context.Context, symbolYF string) *dto.NewsArtifact
	LoadLegal(ctx context.Context, symbolYF string) *dto.LegalArtifact

	SaveScore(ctx context.Context, key string, score *dto.ScoredStock) error
	LoadScore(ctx context.Context, key string) *dto.ScoredStock
	LoadAllScores(ctx context.Context) ([]dto.ScoredStock, error)

	SaveOHLCV(ctx context.Context, data *dto.OHLCVData) error
	LoadOHLCV(ctx context.Context, symbolYF string) *dto.OHLCVData
}

type artifactRepository struct {
	dataDir  string
	cacheDir string
	log      *logger.Logger
}

func NewArtifactRepository(cfg *config.Config, log *logger.Logger) (ArtifactRepository, error) {
	r := &artifactRepository{
		dataDir:  cfg.Analyzer.DataDir,
		cacheDir: cfg.Analyzer.CacheDir,
		log:      log,
	}
	for _, dir := range []string{
		filepath.Join(r.dataDir, "technical"),
		filepath.Join(r.dataDir, "fundamentals"),
		filepath.Join(r.dataDir, "news"),
		filepath.Join(r.dataDir, "legal"),
		filepath.Join(r.dataDir, "scores"),
		filepath.Join(r.cacheDir, "ohlcv"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return r, nil
}

// fileKey makes a symbol or holding key safe as a filename. The "@" broker
// separator is legal in filenames and stays, so a score lands on disk under
// the same <symbol>@<broker> key it is addressed by.
func fileKey(key string) string {
	return strings.ReplaceAll(key, "/", "_")
}

func (r *artifactRepository) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readJSON returns false when the file is absent or does not decode.
func (r *artifactRepository) readJSON(ctx context.Context, path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.WarnContext(ctx, "Failed to read artifact file",
				logger.StringField("path", path), logger.ErrorField(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.log.WarnContext(ctx, "Malformed artifact file, treating as missing",
			logger.StringField("path", path), logger.ErrorField(err))
		return false
	}
	return true
}

func (r *artifactRepository) SaveHoldings(_ context.Context, hs []holdings.Holding) error {
	return r.writeJSON(filepath.Join(r.dataDir, "holdings.json"), hs)
}

func (r *artifactRepository) LoadHoldings(ctx context.Context) ([]holdings.Holding, error) {
	path := filepath.Join(r.dataDir, "holdings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no holdings found, run import-holdings first: %w", err)
		}
		return nil, err
	}
	var hs []holdings.Holding
	if err := json.Unmarshal(data, &hs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return hs, nil
}

func (r *artifactRepository) SaveTechnical(_ context.Context, artifact *dto.TechnicalArtifact) error {
	path := filepath.Join(r.dataDir, "technical", fileKey(artifact.Symbol)+".json")
	return r.writeJSON(path, artifact)
}

func (r *artifactRepository) LoadTechnical(ctx context.Context, symbolYF string) *dto.TechnicalArtifact {
	var artifact dto.TechnicalArtifact
	path := filepath.Join(r.dataDir, "technical", fileKey(symbolYF)+".json")
	if !r.readJSON(ctx, path, &artifact) {
		return nil
	}
	return &artifact
}

func (r *artifactRepository) LoadFundamental(ctx context.Context, symbolYF string) *dto.FundamentalArtifact {
	var artifact dto.FundamentalArtifact
	path := filepath.Join(r.dataDir, "fundamentals", fileKey(symbolYF)+".json")
	if !r.readJSON(ctx, path, &artifact) {
		return nil
	}
	return &artifact
}

func (r *artifactRepository) LoadNews(ctx context.Context, symbolYF string) *dto.NewsArtifact {
	var artifact dto.NewsArtifact
	path := filepath.Join(r.dataDir, "news", fileKey(symbolYF)+".json")
	if !r.readJSON(ctx, path, &artifact) {
		return nil
	}
	return &artifact
}

func (r *artifactRepository) LoadLegal(ctx context.Context, symbolYF string) *dto.LegalArtifact {
	var artifact dto.LegalArtifact
	path := filepath.Join(r.dataDir, "legal", fileKey(symbolYF)+".json")
	if !r.readJSON(ctx, path, &artifact) {
		return nil
	}
	return &artifact
}

func (r *artifactRepository) SaveScore(_ context.Context, key string, score *dto.ScoredStock) error {
	path := filepath.Join(r.dataDir, "scores", fileKey(key)+".json")
	return r.writeJSON(path, score)
}

func (r *artifactRepository) LoadScore(ctx context.Context, key string) *dto.ScoredStock {
	var score dto.ScoredStock
	path := filepath.Join(r.dataDir, "scores", fileKey(key)+".json")
	if !r.readJSON(ctx, path, &score) {
		return nil
	}
	return &score
}

func (r *artifactRepository) LoadAllScores(ctx context.Context) ([]dto.ScoredStock, error) {
	dir := filepath.Join(r.dataDir, "scores")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var scores []dto.ScoredStock
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var score dto.ScoredStock
		if !r.readJSON(ctx, filepath.Join(dir, entry.Name()), &score) {
			continue
		}
		scores = append(scores, score)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Symbol < scores[j].Symbol })
	return scores, nil
}

func (r *artifactRepository) SaveOHLCV(_ context.Context, data *dto.OHLCVData) error {
	path := filepath.Join(r.cacheDir, "ohlcv", fileKey(data.Symbol)+".json")
	return r.writeJSON(path, data)
}

// LoadOHLCV returns nil when the cached history is absent, malformed or
// older than the configured freshness window. Staleness is checked by
// the caller via FetchedAt so forced refreshes stay possible.
func (r *artifactRepository) LoadOHLCV(ctx context.Context, symbolYF string) *dto.OHLCVData {
	var data dto.OHLCVData
	path := filepath.Join(r.cacheDir, "ohlcv", fileKey(symbolYF)+".json")
	if !r.readJSON(ctx, path, &data) {
		return nil
	}
	return &data
}
