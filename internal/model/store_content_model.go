package model

import (
	"time"

	"gorm.io/datatypes"
)

// StoreContent is the CMS mirror written by the storefront integration.
type StoreContent struct {
	Id          int64          `gorm:"primaryKey;autoIncrement:false"`
	ContentType string         `gorm:"type:varchar(64);not null;index"`
	Title       string         `gorm:"type:text"`
	Body        string         `gorm:"type:text"`
	Excerpt     string         `gorm:"type:text"`
	URL         string         `gorm:"type:text"`
	Status      string         `gorm:"type:varchar(20);default:'publish';index"`
	Attributes  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (StoreContent) TableName() string {
	return "store_contents"
}
