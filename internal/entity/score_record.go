package entity

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScoreRecord struct {
	ID             int64          `json:"id"`
	Symbol         string         `json:"symbol"`
	Broker         string         `json:"broker"`
	Profile        string         `json:"profile"`
	OverallScore   float64        `json:"overall_score"`
	Recommendation string         `json:"recommendation"`
	Confidence     string         `json:"confidence"`
	CoverageCount  int            `json:"coverage_count"`
	Data           datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at"`
}

func (ScoreRecord) TableName() string {
	return "score_records"
}
