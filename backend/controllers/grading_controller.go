package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
	"socdocs/backend/services"
	"socdocs/backend/utils"
)

type GradingController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGradingController(db *gorm.DB, cfg *config.Config) *GradingController {
	return &GradingController{DB: db, Cfg: cfg}
}

// ListMilestones godoc
// @Summary List milestones with the viewer's submission state
// @Tags grading
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /milestones [get]
func (gc *GradingController) ListMilestones(c *fiber.Ctx) error {
	user := currentUser(c, gc.DB, gc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var milestones []models.Milestone
	gc.DB.Preload("Criteria").Order("due_date").Find(&milestones)

	var mine []models.Submission
	gc.DB.Where("student_id = ?", user.ID).Find(&mine)
	submitted := make(map[uint]bool, len(mine))
	for _, s := range mine {
		submitted[s.MilestoneID] = true
	}

	result := make([]fiber.Map, 0, len(milestones))
	for _, m := range milestones {
		result = append(result, fiber.Map{
			"id":          m.ID,
			"title":       m.Title,
			"description": m.Description,
			"due_date":    m.DueDate,
			"max_points":  m.MaxPoints,
			"criteria":    len(m.Criteria),
			"submitted":   submitted[m.ID],
		})
	}
	return c.JSON(fiber.Map{"milestones": result})
}

// CreateMilestone godoc
// @Summary Staff: create a milestone with its criteria
// @Tags grading
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/milestones [post]
func (gc *GradingController) CreateMilestone(c *fiber.Ctx) error {
	type CriterionInput struct {
		Label     string  `json:"label"`
		MaxPoints float64 `json:"max_points"`
		Weight    float64 `json:"weight"`
	}
	type MilestoneInput struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		MaxPoints   int              `json:"max_points"`
		Criteria    []CriterionInput `json:"criteria"`
	}

	var input MilestoneInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	milestone := models.Milestone{
		Title:       input.Title,
		Description: input.Description,
		MaxPoints:   input.MaxPoints,
	}
	for _, crit := range input.Criteria {
		weight := crit.Weight
		if weight == 0 {
			weight = 1
		}
		milestone.Criteria = append(milestone.Criteria, models.Criterion{
			Label:     crit.Label,
			MaxPoints: crit.MaxPoints,
			Weight:    weight,
		})
	}

	if err := gc.DB.Create(&milestone).Error; err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Milestone created",
		"milestone": fiber.Map{"id": milestone.ID, "title": milestone.Title},
	})
}

// Submit godoc
// @Summary Create or update the viewer's submission for a milestone
// @Tags grading
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /milestones/{id}/submit [post]
func (gc *GradingController) Submit(c *fiber.Ctx) error {
	user := currentUser(c, gc.DB, gc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	milestoneID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid milestone id")
	}

	type SubmitInput struct {
		Notes       string `json:"notes"`
		DocsURL     string `json:"docs_url"`
		DiagramURL  string `json:"diagram_url"`
		PoliciesURL string `json:"policies_url"`
	}
	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	sub, err := services.UpsertSubmission(gc.DB, user, uint(milestoneID), services.SubmissionInput{
		Notes:       input.Notes,
		DocsURL:     input.DocsURL,
		DiagramURL:  input.DiagramURL,
		PoliciesURL: input.PoliciesURL,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Submission saved",
		"submission": fiber.Map{"id": sub.ID, "milestone_id": sub.MilestoneID},
	})
}

// SubmitFromDoc godoc
// @Summary Submit a team doc page as evidence for a milestone
// @Tags grading
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /docs/{slug}/submit [post]
func (gc *GradingController) SubmitFromDoc(c *fiber.Ctx) error {
	user := currentUser(c, gc.DB, gc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var page models.DocPage
	if err := gc.DB.Where("slug = ?", c.Params("slug")).First(&page).Error; err != nil {
		return utils.NotFound(c, "Document not found")
	}

	type Input struct {
		MilestoneID uint `json:"milestone_id"`
	}
	var input Input
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	docURL := c.BaseURL() + "/api/docs/" + page.Slug
	sub, err := services.SubmitFromDoc(gc.DB, user, &page, input.MilestoneID, docURL)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Submission saved using this doc",
		"submission": fiber.Map{"id": sub.ID, "milestone_id": sub.MilestoneID},
	})
}

// MyScores godoc
// @Summary Show the viewer's submissions and scores
// @Tags grading
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /scores [get]
func (gc *GradingController) MyScores(c *fiber.Ctx) error {
	user := currentUser(c, gc.DB, gc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var subs []models.Submission
	gc.DB.Preload("Milestone").Where("student_id = ?", user.ID).Find(&subs)

	result := make([]fiber.Map, 0, len(subs))
	for _, s := range subs {
		result = append(result, fiber.Map{
			"milestone": s.Milestone.Title,
			"graded":    s.Graded,
			"score":     s.Score,
		})
	}
	return c.JSON(fiber.Map{"scores": result})
}

// MilestoneSubmissions godoc
// @Summary Staff: all submissions for a milestone
// @Tags grading
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/milestones/{id}/submissions [get]
func (gc *GradingController) MilestoneSubmissions(c *fiber.Ctx) error {
	milestoneID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid milestone id")
	}

	var milestone models.Milestone
	if err := gc.DB.First(&milestone, milestoneID).Error; err != nil {
		return utils.NotFound(c, "Milestone not found")
	}

	var subs []models.Submission
	gc.DB.Preload("Student").
		Where("milestone_id = ?", milestoneID).
		Joins("JOIN users ON users.id = submissions.student_id").
		Order("users.username").
		Find(&subs)

	result := make([]fiber.Map, 0, len(subs))
	for _, s := range subs {
		result = append(result, fiber.Map{
			"id":       s.ID,
			"student":  s.Student.Username,
			"notes":    s.Notes,
			"docs_url": s.DocsURL,
			"graded":   s.Graded,
			"score":    s.Score,
		})
	}
	return c.JSON(fiber.Map{
		"milestone":   fiber.Map{"id": milestone.ID, "title": milestone.Title},
		"submissions": result,
	})
}

// OpenGrading godoc
// @Summary Staff: open the grading sheet for a submission
// @Description Lazily creates a zero-point row per criterion
// @Tags grading
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/submissions/{id}/grade [get]
func (gc *GradingController) OpenGrading(c *fiber.Ctx) error {
	submissionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission id")
	}

	var sub models.Submission
	if err := gc.DB.Preload("Milestone").First(&sub, submissionID).Error; err != nil {
		return utils.NotFound(c, "Submission not found")
	}

	scores, err := services.EnsureCriterionScores(gc.DB, &sub)
	if err != nil {
		return serviceError(c, err)
	}

	rows := make([]fiber.Map, 0, len(scores))
	for _, cs := range scores {
		rows = append(rows, fiber.Map{
			"criterion_id": cs.CriterionID,
			"label":        cs.Criterion.Label,
			"max_points":   cs.Criterion.MaxPoints,
			"weight":       cs.Criterion.Weight,
			"points":       cs.Points,
			"comment":      cs.Comment,
		})
	}
	return c.JSON(fiber.Map{
		"submission": fiber.Map{"id": sub.ID, "milestone": sub.Milestone.Title},
		"rows":       rows,
	})
}

// Grade godoc
// @Summary Staff: bulk-save criterion scores and recompute the total
// @Tags grading
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/submissions/{id}/grade [post]
func (gc *GradingController) Grade(c *fiber.Ctx) error {
	user := currentUser(c, gc.DB, gc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	submissionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission id")
	}

	type Input struct {
		Points   map[uint]float64 `json:"points"`
		Comments map[uint]string  `json:"comments"`
	}
	var input Input
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	sub, err := services.GradeSubmission(gc.DB, user, uint(submissionID), input.Points, input.Comments)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Scores saved",
		"submission": fiber.Map{"id": sub.ID, "score": sub.Score, "graded": sub.Graded},
	})
}

// TeamMatrix godoc
// @Summary Staff: average graded score per (team, milestone)
// @Tags grading
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/team-matrix [get]
func (gc *GradingController) TeamMatrix(c *fiber.Ctx) error {
	var teams []models.Team
	gc.DB.Order("name").Find(&teams)
	var milestones []models.Milestone
	gc.DB.Order("title").Find(&milestones)

	cells, err := services.TeamMatrix(gc.DB, teams, milestones)
	if err != nil {
		return serviceError(c, err)
	}

	grid := make(map[uint]map[uint]*float64, len(teams))
	for _, cell := range cells {
		row, ok := grid[cell.TeamID]
		if !ok {
			row = make(map[uint]*float64, len(milestones))
			grid[cell.TeamID] = row
		}
		row[cell.MilestoneID] = cell.Average
	}

	teamList := make([]fiber.Map, 0, len(teams))
	for _, t := range teams {
		teamList = append(teamList, fiber.Map{"id": t.ID, "name": t.Name})
	}
	milestoneList := make([]fiber.Map, 0, len(milestones))
	for _, m := range milestones {
		milestoneList = append(milestoneList, fiber.Map{"id": m.ID, "title": m.Title})
	}

	return c.JSON(fiber.Map{
		"teams":      teamList,
		"milestones": milestoneList,
		"grid":       grid,
	})
}
