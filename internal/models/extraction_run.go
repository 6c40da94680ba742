package models

import (
	"time"

	"github.com/google/uuid"
)

type ExtractionKind string

const (
	KindJobAnalysis       ExtractionKind = "job_analysis"
	KindTailoringStrategy ExtractionKind = "tailoring_strategy"
)

type RunPhase string

const (
	PhasePending   RunPhase = "pending"
	PhaseExtracted RunPhase = "extracted"
	PhasePersisted RunPhase = "persisted"
	PhaseFailed    RunPhase = "failed"
)

// ExtractionRun is the durable record of one "invoke model, then persist"
// sequence. A run left in PhaseExtracted holds a validated payload that never
// reached the job record.
type ExtractionRun struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       string         `gorm:"type:text;index;not null" json:"user_id"`
	JobID        string         `gorm:"type:text;index;not null" json:"job_id"`
	Kind         ExtractionKind `gorm:"type:text;not null" json:"kind"`
	Phase        RunPhase       `gorm:"type:text;index;not null;default:'pending'" json:"phase"`
	Payload      string         `gorm:"type:text" json:"payload,omitempty"`
	ErrorMessage string         `gorm:"type:text" json:"error_message,omitempty"`
	Attempts     int            `gorm:"not null;default:0" json:"attempts"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ExtractionRun) TableName() string {
	return "extraction_runs"
}
