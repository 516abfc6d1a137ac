package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
	"socdocs/backend/services"
	"socdocs/backend/utils"
)

type DiagramsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewDiagramsController(db *gorm.DB, cfg *config.Config) *DiagramsController {
	return &DiagramsController{DB: db, Cfg: cfg}
}

// List godoc
// @Summary List network diagrams visible to the viewer
// @Tags diagrams
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /diagrams [get]
func (dc *DiagramsController) List(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)
	viewer := services.ViewerFor(user)

	var diagrams []models.Diagram
	dc.DB.Order("created_at desc").Find(&diagrams)

	result := make([]fiber.Map, 0, len(diagrams))
	for i := range diagrams {
		d := &diagrams[i]
		perms := services.ResolveVisibility(&d.ContentFields, viewer)
		if !perms.CanView {
			continue
		}
		result = append(result, fiber.Map{
			"title":        d.Title,
			"slug":         d.Slug,
			"fossflow_url": d.FossflowURL,
			"approved":     d.Approved,
			"visibility":   d.Visibility,
		})
	}

	return c.JSON(fiber.Map{"diagrams": result})
}

// View godoc
// @Summary View a diagram
// @Tags diagrams
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /diagrams/{slug} [get]
func (dc *DiagramsController) View(c *fiber.Ctx) error {
	var diagram models.Diagram
	if err := dc.DB.Where("slug = ?", c.Params("slug")).First(&diagram).Error; err != nil {
		return utils.NotFound(c, "Diagram not found")
	}

	user := currentUser(c, dc.DB, dc.Cfg)
	perms := services.ResolveVisibility(&diagram.ContentFields, services.ViewerFor(user))
	if !perms.CanView {
		return utils.NotFound(c, "Diagram not found")
	}

	return c.JSON(fiber.Map{
		"diagram": fiber.Map{
			"title":        diagram.Title,
			"slug":         diagram.Slug,
			"notes":        diagram.Body,
			"fossflow_url": diagram.FossflowURL,
			"approved":     diagram.Approved,
			"visibility":   diagram.Visibility,
			"can_edit":     perms.CanEdit,
			"can_publish":  perms.CanPublish,
		},
	})
}

type diagramInput struct {
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	FossflowURL string `json:"fossflow_url"`
	PublishNow  bool   `json:"publish_now"`
}

// Create godoc
// @Summary Create a diagram
// @Tags diagrams
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /diagrams [post]
func (dc *DiagramsController) Create(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input diagramInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var diagram models.Diagram
	err := services.InitItem(dc.DB, user, &diagram, services.CreateInput{
		Title:      input.Title,
		Body:       input.Notes,
		PublishNow: input.PublishNow,
	})
	if err != nil {
		return serviceError(c, err)
	}
	diagram.FossflowURL = input.FossflowURL

	if err := dc.DB.Create(&diagram).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Diagram created",
		"diagram": fiber.Map{"slug": diagram.Slug, "title": diagram.Title},
	})
}

// Edit godoc
// @Summary Edit a diagram
// @Tags diagrams
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /diagrams/{slug} [put]
func (dc *DiagramsController) Edit(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var diagram models.Diagram
	if err := dc.DB.Where("slug = ?", c.Params("slug")).First(&diagram).Error; err != nil {
		return utils.NotFound(c, "Diagram not found")
	}

	var input diagramInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.FossflowURL != "" {
		diagram.FossflowURL = input.FossflowURL
	}
	if err := services.EditItem(dc.DB, user, &diagram, input.Title, input.Notes); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Diagram updated"})
}

// Publish godoc
// @Summary Publish a diagram to the whole class
// @Tags diagrams
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /diagrams/{slug}/publish [post]
func (dc *DiagramsController) Publish(c *fiber.Ctx) error {
	user := currentUser(c, dc.DB, dc.Cfg)

	var diagram models.Diagram
	if err := dc.DB.Where("slug = ?", c.Params("slug")).First(&diagram).Error; err != nil {
		return utils.NotFound(c, "Diagram not found")
	}

	if err := services.Publish(dc.DB, user, &diagram); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Diagram published to the whole class"})
}
