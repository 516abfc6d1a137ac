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

type ModerationController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewModerationController(db *gorm.DB, cfg *config.Config) *ModerationController {
	return &ModerationController{DB: db, Cfg: cfg}
}

// Queue godoc
// @Summary Staff: list unapproved docs and policies
// @Tags moderation
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/moderation [get]
func (mc *ModerationController) Queue(c *fiber.Ctx) error {
	var docDrafts []models.DocPage
	mc.DB.Where("approved = ?", false).Order("updated_at desc").Find(&docDrafts)

	var policyDrafts []models.Policy
	mc.DB.Where("approved = ?", false).Order("updated_at desc").Find(&policyDrafts)

	docs := make([]fiber.Map, 0, len(docDrafts))
	for _, d := range docDrafts {
		docs = append(docs, fiber.Map{"id": d.ID, "title": d.Title, "slug": d.Slug})
	}
	policies := make([]fiber.Map, 0, len(policyDrafts))
	for _, p := range policyDrafts {
		policies = append(policies, fiber.Map{"id": p.ID, "title": p.Title, "slug": p.Slug})
	}

	return c.JSON(fiber.Map{"doc_drafts": docs, "policy_drafts": policies})
}

// ApproveDoc godoc
// @Summary Staff: approve a doc draft without changing its visibility
// @Tags moderation
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/moderation/docs/{id}/approve [post]
func (mc *ModerationController) ApproveDoc(c *fiber.Ctx) error {
	user := currentUser(c, mc.DB, mc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid id")
	}

	var page models.DocPage
	if err := mc.DB.First(&page, id).Error; err != nil {
		return utils.NotFound(c, "Document not found")
	}
	if err := services.Approve(mc.DB, user, &page); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Document approved"})
}

// ApprovePolicy godoc
// @Summary Staff: approve a policy draft without changing its visibility
// @Tags moderation
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/moderation/policies/{id}/approve [post]
func (mc *ModerationController) ApprovePolicy(c *fiber.Ctx) error {
	user := currentUser(c, mc.DB, mc.Cfg)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid id")
	}

	var policy models.Policy
	if err := mc.DB.First(&policy, id).Error; err != nil {
		return utils.NotFound(c, "Policy not found")
	}
	if err := services.Approve(mc.DB, user, &policy); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Policy approved"})
}
