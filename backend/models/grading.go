package models

import (
	"time"

	"gorm.io/gorm"
)

type Milestone struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	DueDate     *time.Time
	MaxPoints   int `gorm:"default:100"`
	Criteria    []Criterion
}

type Criterion struct {
	gorm.Model
	MilestoneID uint    `gorm:"not null;index"`
	Label       string  `gorm:"not null"`
	MaxPoints   float64 `gorm:"default:10"`
	Weight      float64 `gorm:"default:1"`
}

// Submission is unique per (milestone, student); the index backs the
// atomic upsert in the grading service.
type Submission struct {
	gorm.Model
	MilestoneID uint `gorm:"not null;uniqueIndex:idx_submissions_milestone_student"`
	Milestone   Milestone
	StudentID   uint `gorm:"not null;uniqueIndex:idx_submissions_milestone_student"`
	Student     User
	TeamID      *uint
	Notes       string `gorm:"type:text"`
	DocsURL     string
	DiagramURL  string
	PoliciesURL string
	DocID       *uint // evidence doc, when submitted from a doc page
	Graded      bool  `gorm:"default:false"`
	Score       float64
}

type CriterionScore struct {
	gorm.Model
	SubmissionID uint `gorm:"not null;uniqueIndex:idx_scores_submission_criterion"`
	CriterionID  uint `gorm:"not null;uniqueIndex:idx_scores_submission_criterion"`
	Criterion    Criterion
	Points       float64 `gorm:"default:0"`
	Comment      string  `gorm:"type:text"`
}
