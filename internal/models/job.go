package models

import (
	"time"
)

type JobStatus string

const (
	StatusWishlist   JobStatus = "wishlist"
	StatusAnalyzing  JobStatus = "analyzing"
	StatusGenerating JobStatus = "generating"
	StatusApplied    JobStatus = "applied"
	StatusInterview  JobStatus = "interview"
	StatusOffer      JobStatus = "offer"
)

var jobStatuses = []JobStatus{
	StatusWishlist,
	StatusAnalyzing,
	StatusGenerating,
	StatusApplied,
	StatusInterview,
	StatusOffer,
}

// JobStatuses returns the closed set of lifecycle labels in board order.
func JobStatuses() []JobStatus {
	out := make([]JobStatus, len(jobStatuses))
	copy(out, jobStatuses)
	return out
}

func (s JobStatus) Valid() bool {
	for _, status := range jobStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// JobIntelligence is the normalized reading of a job posting. It is only ever
// produced by the extraction client.
type JobIntelligence struct {
	RoleName              string   `json:"role_name"`
	JobDescriptionSummary string   `json:"job_description_summary"`
	RequiredExperience    string   `json:"required_experience"`
	DesirableExperience   *string  `json:"desirable_experience"`
	HardSkills            []string `json:"hard_skills"`
	SoftSkills            []string `json:"soft_skills"`
	CulturalValues        []string `json:"cultural_values"`
	MissionCritical       string   `json:"mission_critical"`
}

const (
	GapMissingSkills  = "missing_skills"
	GapMatchingSkills = "matching_skills"
)

type TailoringStrategy struct {
	MatchScore            int                 `json:"match_score"`
	GapAnalysis           map[string][]string `json:"gap_analysis"`
	TailoringInstructions []string            `json:"tailoring_instructions"`
	SuggestedSummary      string              `json:"suggested_summary"`
}

type JobApplication struct {
	ID                     string             `gorm:"type:text;primaryKey" json:"id"`
	UserID                 string             `gorm:"type:text;index;not null" json:"user_id" validate:"required"`
	CompanyName            string             `gorm:"type:text" json:"company_name" validate:"required"`
	PositionTitle          string             `gorm:"type:text" json:"position_title" validate:"required"`
	JobURL                 string             `gorm:"type:text" json:"job_url" validate:"required,url"`
	Status                 JobStatus          `gorm:"type:text;not null;default:'wishlist'" json:"status"`
	CreatedAt              time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	RawDescription         *string            `gorm:"type:text" json:"raw_description,omitempty"`
	JobIntel               *JobIntelligence   `gorm:"type:jsonb;serializer:json" json:"job_intel,omitempty"`
	TailoringStrategy      *TailoringStrategy `gorm:"type:jsonb;serializer:json" json:"tailoring_strategy,omitempty"`
	TailoredResumeMarkdown *string            `gorm:"type:text" json:"tailored_resume_markdown,omitempty"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}

// JobUpdate carries the user-editable fields of a job. Anything else in an
// update payload is dropped on decode.
type JobUpdate struct {
	Status         *JobStatus `json:"status,omitempty"`
	RawDescription *string    `json:"raw_description,omitempty"`
	PositionTitle  *string    `json:"position_title,omitempty"`
	JobURL         *string    `json:"job_url,omitempty" validate:"omitempty,url"`
	CompanyName    *string    `json:"company_name,omitempty"`
}

func (u JobUpdate) IsEmpty() bool {
	return u.Status == nil &&
		u.RawDescription == nil &&
		u.PositionTitle == nil &&
		u.JobURL == nil &&
		u.CompanyName == nil
}

// Columns maps the supplied fields onto their column names.
func (u JobUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Status != nil {
		cols["status"] = string(*u.Status)
	}
	if u.RawDescription != nil {
		cols["raw_description"] = *u.RawDescription
	}
	if u.PositionTitle != nil {
		cols["position_title"] = *u.PositionTitle
	}
	if u.JobURL != nil {
		cols["job_url"] = *u.JobURL
	}
	if u.CompanyName != nil {
		cols["company_name"] = *u.CompanyName
	}
	return cols
}

// Apply merges the supplied fields into job.
func (u JobUpdate) Apply(job *JobApplication) {
	if u.Status != nil {
		job.Status = *u.Status
	}
	if u.RawDescription != nil {
		desc := *u.RawDescription
		job.RawDescription = &desc
	}
	if u.PositionTitle != nil {
		job.PositionTitle = *u.PositionTitle
	}
	if u.JobURL != nil {
		job.JobURL = *u.JobURL
	}
	if u.CompanyName != nil {
		job.CompanyName = *u.CompanyName
	}
}
