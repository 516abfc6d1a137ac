package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socdocs/backend/models"
)

// SubmissionInput carries the student-editable fields of a submission.
type SubmissionInput struct {
	Notes       string
	DocsURL     string
	DiagramURL  string
	PoliciesURL string
	DocID       *uint
}

// UpsertSubmission creates or updates the student's submission for a
// milestone in a single atomic statement keyed on the unique
// (milestone_id, student_id) index, so concurrent submits can never
// produce two rows. The student's current team is attached so the team
// matrix can aggregate later.
func UpsertSubmission(db *gorm.DB, student *models.User, milestoneID uint, in SubmissionInput) (*models.Submission, error) {
	var milestone models.Milestone
	if err := db.First(&milestone, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sub := models.Submission{
		MilestoneID: milestoneID,
		StudentID:   student.ID,
		TeamID:      student.TeamID,
		Notes:       in.Notes,
		DocsURL:     in.DocsURL,
		DiagramURL:  in.DiagramURL,
		PoliciesURL: in.PoliciesURL,
		DocID:       in.DocID,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "milestone_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"team_id", "notes", "docs_url", "diagram_url", "policies_url", "doc_id", "updated_at",
		}),
	}).Create(&sub).Error
	if err != nil {
		return nil, err
	}

	// Re-read: on conflict the in-memory struct does not carry the
	// existing row's ID or graded state.
	var saved models.Submission
	if err := db.Where("milestone_id = ? AND student_id = ?", milestoneID, student.ID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// SubmitFromDoc links a team doc to a milestone as the student's
// submission. Only members of the doc's team may submit it.
func SubmitFromDoc(db *gorm.DB, student *models.User, doc *models.DocPage, milestoneID uint, docURL string) (*models.Submission, error) {
	if student.TeamID == nil {
		return nil, validationErr("You must be on a team before submitting documentation.")
	}
	if doc.TeamID == nil || *doc.TeamID != *student.TeamID {
		return nil, validationErr("You can only submit documentation for your own team's pages.")
	}
	return UpsertSubmission(db, student, milestoneID, SubmissionInput{
		DocsURL: docURL,
		DocID:   &doc.ID,
	})
}

// EnsureCriterionScores lazily creates a zero-point CriterionScore for
// every criterion of the submission's milestone. Idempotent: rows that
// already exist are left alone.
func EnsureCriterionScores(db *gorm.DB, sub *models.Submission) ([]models.CriterionScore, error) {
	var criteria []models.Criterion
	if err := db.Where("milestone_id = ?", sub.MilestoneID).Order("id").Find(&criteria).Error; err != nil {
		return nil, err
	}
	for _, crit := range criteria {
		cs := models.CriterionScore{SubmissionID: sub.ID, CriterionID: crit.ID}
		err := db.Where("submission_id = ? AND criterion_id = ?", sub.ID, crit.ID).
			FirstOrCreate(&cs).Error
		if err != nil {
			return nil, err
		}
	}

	var scores []models.CriterionScore
	err := db.Preload("Criterion").
		Where("submission_id = ?", sub.ID).Order("criterion_id").
		Find(&scores).Error
	return scores, err
}

// GradeSubmission bulk-saves criterion points and comments for one
// submission and recomputes its total as sum(points * weight). The
// writes and the recompute run in one transaction so a partial grade is
// never observable. Points must stay within [0, criterion.max_points].
func GradeSubmission(db *gorm.DB, actor *models.User, submissionID uint, points map[uint]float64, comments map[uint]string) (*models.Submission, error) {
	if !actor.IsStaff() {
		return nil, ErrPermissionDenied
	}

	var sub models.Submission
	if err := db.First(&sub, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	scores, err := EnsureCriterionScores(db, &sub)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		total := 0.0
		for i := range scores {
			cs := &scores[i]
			if pts, ok := points[cs.CriterionID]; ok {
				if pts < 0 || pts > cs.Criterion.MaxPoints {
					return validationErr(fmt.Sprintf(
						"Points for %q must be between 0 and %g.",
						cs.Criterion.Label, cs.Criterion.MaxPoints,
					))
				}
				cs.Points = pts
			}
			if comment, ok := comments[cs.CriterionID]; ok {
				cs.Comment = comment
			}
			if err := tx.Model(&models.CriterionScore{}).
				Where("id = ?", cs.ID).
				Updates(map[string]interface{}{"points": cs.Points, "comment": cs.Comment}).Error; err != nil {
				return err
			}
			total += cs.Points * cs.Criterion.Weight
		}
		return tx.Model(&sub).
			Updates(map[string]interface{}{"score": total, "graded": true}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := db.First(&sub, submissionID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// RecomputeScore re-derives a submission's total from its stored
// criterion scores without changing them.
func RecomputeScore(db *gorm.DB, sub *models.Submission) (float64, error) {
	var scores []models.CriterionScore
	if err := db.Preload("Criterion").
		Where("submission_id = ?", sub.ID).Find(&scores).Error; err != nil {
		return 0, err
	}
	total := 0.0
	for _, cs := range scores {
		total += cs.Points * cs.Criterion.Weight
	}
	err := db.Model(sub).
		Updates(map[string]interface{}{"score": total, "graded": true}).Error
	return total, err
}

// MatrixCell is one (team, milestone) average in the instructor report.
type MatrixCell struct {
	TeamID      uint
	MilestoneID uint
	Average     *float64
}

// TeamMatrix computes the average graded score per (team, milestone).
// Cells with no graded submissions have a nil average.
func TeamMatrix(db *gorm.DB, teams []models.Team, milestones []models.Milestone) ([]MatrixCell, error) {
	cells := make([]MatrixCell, 0, len(teams)*len(milestones))
	for _, t := range teams {
		for _, m := range milestones {
			var avg *float64
			row := db.Model(&models.Submission{}).
				Where("team_id = ? AND milestone_id = ? AND graded = ?", t.ID, m.ID, true).
				Select("AVG(score)").Row()
			if err := row.Scan(&avg); err != nil {
				return nil, err
			}
			cells = append(cells, MatrixCell{TeamID: t.ID, MilestoneID: m.ID, Average: avg})
		}
	}
	return cells, nil
}
