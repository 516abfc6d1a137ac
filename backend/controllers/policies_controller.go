package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
	"socdocs/backend/services"
	"socdocs/backend/utils"
)

type PoliciesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewPoliciesController(db *gorm.DB, cfg *config.Config) *PoliciesController {
	return &PoliciesController{DB: db, Cfg: cfg}
}

// List godoc
// @Summary List security policies
// @Description Published policies grouped by category, plus the viewer's own drafts
// @Tags policies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /policies [get]
func (pc *PoliciesController) List(c *fiber.Ctx) error {
	var published []models.Policy
	pc.DB.Where("approved = ? AND visibility IN ?", true,
		[]string{models.VisibilityClass, models.VisibilityGlobal}).
		Order("category_code, title").Find(&published)

	grouped := make(map[string][]fiber.Map)
	for _, p := range published {
		label := models.PolicyCategories[p.CategoryCode]
		if label == "" {
			label = models.PolicyCategories["OT"]
		}
		grouped[label] = append(grouped[label], fiber.Map{
			"title":   p.Title,
			"slug":    p.Slug,
			"version": p.Version,
		})
	}

	result := fiber.Map{"grouped": grouped}

	// Own drafts, for visibility while writing.
	user := currentUser(c, pc.DB, pc.Cfg)
	if user != nil {
		var drafts []models.Policy
		pc.DB.Where("owner_id = ? AND approved = ?", user.ID, false).
			Order("updated_at desc").Find(&drafts)
		draftList := make([]fiber.Map, 0, len(drafts))
		for _, d := range drafts {
			draftList = append(draftList, fiber.Map{"title": d.Title, "slug": d.Slug})
		}
		result["drafts"] = draftList
	}

	return c.JSON(result)
}

// View godoc
// @Summary View a policy
// @Tags policies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /policies/{slug} [get]
func (pc *PoliciesController) View(c *fiber.Ctx) error {
	var policy models.Policy
	if err := pc.DB.Where("slug = ?", c.Params("slug")).First(&policy).Error; err != nil {
		return utils.NotFound(c, "Policy not found")
	}

	user := currentUser(c, pc.DB, pc.Cfg)
	perms := services.ResolveVisibility(&policy.ContentFields, services.ViewerFor(user))
	if !perms.CanView {
		return utils.NotFound(c, "Policy not found")
	}

	return c.JSON(fiber.Map{
		"policy": fiber.Map{
			"title":       policy.Title,
			"slug":        policy.Slug,
			"category":    models.PolicyCategories[policy.CategoryCode],
			"version":     policy.Version,
			"content":     policy.Body,
			"approved":    policy.Approved,
			"visibility":  policy.Visibility,
			"can_edit":    perms.CanEdit,
			"can_publish": perms.CanPublish,
		},
	})
}

type policyInput struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	CategoryCode string `json:"category"`
	Version      string `json:"version"`
	PublishNow   bool   `json:"publish_now"`
}

// Create godoc
// @Summary Create a policy draft
// @Tags policies
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /policies [post]
func (pc *PoliciesController) Create(c *fiber.Ctx) error {
	user := currentUser(c, pc.DB, pc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input policyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.CategoryCode != "" {
		if _, ok := models.PolicyCategories[input.CategoryCode]; !ok {
			return utils.BadRequest(c, "Unknown policy category")
		}
	}

	var policy models.Policy
	err := services.InitItem(pc.DB, user, &policy, services.CreateInput{
		Title:      input.Title,
		Body:       input.Content,
		PublishNow: input.PublishNow,
	})
	if err != nil {
		return serviceError(c, err)
	}
	if input.CategoryCode != "" {
		policy.CategoryCode = input.CategoryCode
	}
	if input.Version != "" {
		policy.Version = input.Version
	}

	if err := pc.DB.Create(&policy).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Policy created",
		"policy":  fiber.Map{"slug": policy.Slug, "title": policy.Title},
	})
}

// Edit godoc
// @Summary Edit a policy
// @Tags policies
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /policies/{slug} [put]
func (pc *PoliciesController) Edit(c *fiber.Ctx) error {
	user := currentUser(c, pc.DB, pc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var policy models.Policy
	if err := pc.DB.Where("slug = ?", c.Params("slug")).First(&policy).Error; err != nil {
		return utils.NotFound(c, "Policy not found")
	}

	var input policyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.CategoryCode != "" {
		if _, ok := models.PolicyCategories[input.CategoryCode]; !ok {
			return utils.BadRequest(c, "Unknown policy category")
		}
		policy.CategoryCode = input.CategoryCode
	}
	if input.Version != "" {
		policy.Version = input.Version
	}

	if err := services.EditItem(pc.DB, user, &policy, input.Title, input.Content); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Policy updated"})
}

// Publish godoc
// @Summary Publish a policy to the whole class
// @Tags policies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /policies/{slug}/publish [post]
func (pc *PoliciesController) Publish(c *fiber.Ctx) error {
	user := currentUser(c, pc.DB, pc.Cfg)

	var policy models.Policy
	if err := pc.DB.Where("slug = ?", c.Params("slug")).First(&policy).Error; err != nil {
		return utils.NotFound(c, "Policy not found")
	}

	if err := services.Publish(pc.DB, user, &policy); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Policy published to the whole class"})
}
