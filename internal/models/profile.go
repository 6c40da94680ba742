package models

import "time"

type ProfileLink struct {
	Label string `json:"label" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

type WorkExperience struct {
	Company     string   `json:"company"`
	Role        string   `json:"role"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

type ProjectExperience struct {
	Name        string   `json:"name"`
	Link        *string  `json:"link,omitempty" validate:"omitempty,url"`
	Description []string `json:"description"`
}

// Education.GraduationYear is free text ("Expected 2025" is fine).
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Major          string `json:"major"`
	GraduationYear string `json:"graduation_year"`
}

// MasterResume is the user's canonical career record, one per user.
type MasterResume struct {
	UserID     string              `gorm:"type:text;primaryKey" json:"user_id"`
	FullName   string              `gorm:"type:text" json:"full_name" validate:"required"`
	Summary    string              `gorm:"type:text" json:"summary"`
	Links      []ProfileLink       `gorm:"type:jsonb;serializer:json" json:"links" validate:"dive"`
	Skills     []string            `gorm:"type:jsonb;serializer:json" json:"skills"`
	Experience []WorkExperience    `gorm:"type:jsonb;serializer:json" json:"experience"`
	Education  []Education         `gorm:"type:jsonb;serializer:json" json:"education"`
	Projects   []ProjectExperience `gorm:"type:jsonb;serializer:json" json:"projects" validate:"dive"`
	UpdatedAt  time.Time           `json:"-"`
}

func (MasterResume) TableName() string {
	return "profiles"
}

// Merge overlays update onto p. Empty strings and nil lists in update leave
// the stored value alone; an explicitly empty list clears it.
func (p *MasterResume) Merge(update *MasterResume) {
	if update.UserID != "" {
		p.UserID = update.UserID
	}
	if update.FullName != "" {
		p.FullName = update.FullName
	}
	if update.Summary != "" {
		p.Summary = update.Summary
	}
	if update.Links != nil {
		p.Links = update.Links
	}
	if update.Skills != nil {
		p.Skills = update.Skills
	}
	if update.Experience != nil {
		p.Experience = update.Experience
	}
	if update.Education != nil {
		p.Education = update.Education
	}
	if update.Projects != nil {
		p.Projects = update.Projects
	}
}
