package repository

import (
	"context"
	"golang-portfolio-analyzer/internal/entity"

	"gorm.io/gorm"
)

type ScoreRecordRepository interface {
	Create(ctx context.Context, record *entity.ScoreRecord) error
	GetLatestBySymbol(ctx context.Context, symbol string, limit int) ([]entity.ScoreRecord, error)
}

type scoreRecordRepository struct {
	db *gorm.DB
}

func NewScoreRecordRepository(db *gorm.DB) ScoreRecordRepository {
	return &scoreRecordRepository{db: db}
}

func (s *scoreRecordRepository) Create(ctx context.Context, record *entity.ScoreRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *scoreRecordRepository) GetLatestBySymbol(ctx context.Context, symbol string, limit int) ([]entity.ScoreRecord, error) {
	var records []entity.ScoreRecord
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
