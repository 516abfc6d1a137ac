package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
	"socdocs/backend/services"
	"socdocs/backend/utils"
)

type DocsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewDocsController(db *gorm.DB, cfg *config.Config) *DocsController {
	return &DocsController{DB: db, Cfg: cfg}
}

// Index godoc
// @Summary List documentation pages
// @Description Published pages for everyone, plus the viewer's team pages
// @Tags docs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /docs [get]
func (dc *DocsController) Index(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)

	var publicPages []models.DocPage
	dc.DB.Preload("Category").
		Where("approved = ? AND visibility IN ?", true,
			[]string{models.VisibilityClass, models.VisibilityGlobal}).
		Order("title").Find(&publicPages)

	var teamPages []models.DocPage
	if user != nil && user.TeamID != nil {
		dc.DB.Preload("Category").
			Where("team_id = ?", *user.TeamID).
			Order("title").Find(&teamPages)
	}

	var categories []models.Category
	dc.DB.Order("name").Find(&categories)

	return c.JSON(fiber.Map{
		"public_pages": docList(publicPages),
		"team_pages":   docList(teamPages),
		"categories":   categories,
	})
}

func docList(pages []models.DocPage) []fiber.Map {
	result := make([]fiber.Map, 0, len(pages))
	for _, p := range pages {
		entry := fiber.Map{
			"title":      p.Title,
			"slug":       p.Slug,
			"visibility": p.Visibility,
			"approved":   p.Approved,
		}
		if p.Category != nil {
			entry["category"] = p.Category.Name
		}
		result = append(result, entry)
	}
	return result
}

// View godoc
// @Summary View a documentation page
// @Tags docs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /docs/{slug} [get]
func (dc *DocsController) View(c *fiber.Ctx) error {
	var page models.DocPage
	err := dc.DB.Preload("Category").Where("slug = ?", c.Params("slug")).First(&page).Error
	if err != nil {
		return utils.NotFound(c, "Document not found")
	}

	user := currentUser(c, dc.DB, dc.Cfg)
	perms := services.ResolveVisibility(&page.ContentFields, services.ViewerFor(user))
	if !perms.CanView {
		// Hidden drafts report not-found, never forbidden.
		return utils.NotFound(c, "Document not found")
	}

	entry := fiber.Map{
		"title":       page.Title,
		"slug":        page.Slug,
		"body":        page.Body,
		"visibility":  page.Visibility,
		"approved":    page.Approved,
		"can_edit":    perms.CanEdit,
		"can_publish": perms.CanPublish,
	}
	if page.Category != nil {
		entry["category"] = page.Category.Name
	}
	return c.JSON(fiber.Map{"page": entry})
}

type docInput struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	CategoryID  *uint  `json:"category_id"`
	NewCategory string `json:"new_category"`
	PublishNow  bool   `json:"publish_now"`
}

// Create godoc
// @Summary Create a documentation page
// @Description Student pages start as team drafts; staff can create global pages
// @Tags docs
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /docs [post]
func (dc *DocsController) Create(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input docInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var page models.DocPage
	err := services.InitItem(dc.DB, user, &page, services.CreateInput{
		Title:      input.Title,
		Body:       input.Body,
		PublishNow: input.PublishNow,
	})
	if err != nil {
		return serviceError(c, err)
	}

	cat, err := services.ResolveCategory(dc.DB, services.CategoryChoice{
		ID:      input.CategoryID,
		NewName: input.NewCategory,
	})
	if err != nil {
		return serviceError(c, err)
	}
	if cat != nil {
		page.CategoryID = &cat.ID
	}

	if err := dc.DB.Create(&page).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Page created",
		"page":    fiber.Map{"slug": page.Slug, "title": page.Title},
	})
}

// Edit godoc
// @Summary Edit a documentation page
// @Tags docs
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /docs/{slug} [put]
func (dc *DocsController) Edit(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var page models.DocPage
	if err := dc.DB.Where("slug = ?", c.Params("slug")).First(&page).Error; err != nil {
		return utils.NotFound(c, "Document not found")
	}

	var input docInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	cat, err := services.ResolveCategory(dc.DB, services.CategoryChoice{
		ID:      input.CategoryID,
		NewName: input.NewCategory,
	})
	if err != nil {
		return serviceError(c, err)
	}
	if cat != nil {
		page.CategoryID = &cat.ID
	}

	if err := services.EditItem(dc.DB, user, &page, input.Title, input.Body); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Page updated", "page": fiber.Map{"slug": page.Slug}})
}

// Publish godoc
// @Summary Publish a team page to the whole class
// @Tags docs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /docs/{slug}/publish [post]
func (dc *DocsController) Publish(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)

	var page models.DocPage
	if err := dc.DB.Where("slug = ?", c.Params("slug")).First(&page).Error; err != nil {
		return utils.NotFound(c, "Document not found")
	}

	if err := services.Publish(dc.DB, user, &page); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFound(c, "Document not found")
		}
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Page published to the whole class"})
}
