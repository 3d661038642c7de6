package models

import (
	"time"

	"gorm.io/gorm"
)

// Diagnostic is one non-fatal failure reported during a run
type Diagnostic struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Kind      string         `gorm:"not null;index" json:"kind"`
	Monitor   int            `gorm:"not null;index" json:"monitor"` // -1 when not tied to a monitor
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type KindCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}
