package model

import (
	"time"

	"ai-shopassist-be/internal/entity"

	"gorm.io/datatypes"
)

type CrawlJob struct {
	Id             int64                                   `gorm:"primaryKey;autoIncrement"`
	Key            string                                  `gorm:"column:job_key;type:varchar(64);uniqueIndex;not null"`
	URL            string                                  `gorm:"type:text;not null"`
	NormalizedURL  string                                  `gorm:"type:text;not null"`
	Options        datatypes.JSONType[entity.CrawlOptions] `gorm:"type:jsonb"`
	Status         string                                  `gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts       int                                     `gorm:"default:0"`
	ErrorType      string                                  `gorm:"type:varchar(32)"`
	ErrorMessage   string                                  `gorm:"type:text"`
	EmbeddingCount int                                     `gorm:"default:0"`
	PagesCrawled   int                                     `gorm:"default:0"`
	CreatedAt      time.Time                               `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                               `gorm:"autoUpdateTime"`
}

func (CrawlJob) TableName() string {
	return "crawl_jobs"
}

type PdfJob struct {
	Id             int64     `gorm:"primaryKey;autoIncrement"`
	Key            string    `gorm:"column:job_key;type:varchar(64);uniqueIndex;not null"`
	FileName       string    `gorm:"type:text;not null"`
	FilePath       string    `gorm:"type:text;not null"`
	FileSize       int64     `gorm:"default:0"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts       int       `gorm:"default:0"`
	ErrorType      string    `gorm:"type:varchar(32)"`
	ErrorMessage   string    `gorm:"type:text"`
	EmbeddingCount int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (PdfJob) TableName() string {
	return "pdf_jobs"
}
