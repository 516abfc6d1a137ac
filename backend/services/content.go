package services

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"socdocs/backend/models"
)

// CategoryChoice is a tagged choice: either an existing category by ID
// or a new one by name. Exactly one side may be set.
type CategoryChoice struct {
	ID      *uint
	NewName string
}

func (ch CategoryChoice) empty() bool {
	return ch.ID == nil && strings.TrimSpace(ch.NewName) == ""
}

// ResolveCategory turns a CategoryChoice into a concrete Category row,
// creating new categories on demand. A nil result means "no category".
func ResolveCategory(db *gorm.DB, ch CategoryChoice) (*models.Category, error) {
	if ch.empty() {
		return nil, nil
	}
	if ch.ID != nil && strings.TrimSpace(ch.NewName) != "" {
		return nil, validationErr("Choose an existing category or name a new one, not both.")
	}
	if ch.ID != nil {
		var cat models.Category
		if err := db.First(&cat, *ch.ID).Error; err != nil {
			return nil, validationErr("Unknown category.")
		}
		return &cat, nil
	}

	name := strings.TrimSpace(ch.NewName)
	var cat models.Category
	err := db.Where("name = ?", name).
		Attrs(models.Category{Name: name, Slug: slug.Make(name)}).
		FirstOrCreate(&cat).Error
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// UniqueSlug derives a slug from the title, suffixing a counter until it
// is free within the item's table.
func UniqueSlug(db *gorm.DB, model models.Item, title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		db.Model(model).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreateInput carries the caller-controlled fields of a new content item.
type CreateInput struct {
	Title string
	Body  string
	// PublishNow lets staff create global content directly in the
	// published state. Ignored for non-staff.
	PublishNow bool
}

// InitItem fills the shared fields of a freshly created content item.
// Non-staff creators must be on a team; their items start as team drafts.
// Staff without a team create global content (published immediately when
// PublishNow is set, otherwise a global draft).
func InitItem(db *gorm.DB, actor *models.User, item models.Item, in CreateInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return validationErr("Title is required.")
	}

	f := item.Content()
	f.Title = strings.TrimSpace(in.Title)
	f.Slug = UniqueSlug(db, item, f.Title)
	f.Body = in.Body
	f.OwnerID = &actor.ID

	if actor.IsStaff() && actor.TeamID == nil {
		f.TeamID = nil
		if in.PublishNow {
			f.Visibility = models.VisibilityClass
			f.Approved = true
		} else {
			f.Visibility = models.VisibilityTeam
			f.Approved = false
		}
		return nil
	}

	if actor.TeamID == nil {
		return validationErr("You must join or create a team before creating content.")
	}
	f.TeamID = actor.TeamID
	f.Visibility = models.VisibilityTeam
	f.Approved = false
	return nil
}

// EditItem applies content changes in place. Visibility and approval are
// never touched here; publication is a separate operation.
func EditItem(db *gorm.DB, actor *models.User, item models.Item, title, body string) error {
	perms := ResolveVisibility(item.Content(), ViewerFor(actor))
	if !perms.CanEdit {
		return ErrPermissionDenied
	}
	f := item.Content()
	if strings.TrimSpace(title) != "" {
		f.Title = strings.TrimSpace(title)
	}
	f.Body = body
	return db.Save(item).Error
}

// Publish moves an item to visibility=class, approved=true. Publication
// is one-way: there is no transition back to draft. Re-publishing an
// already published item is a no-op.
//
// Unauthorized access to a draft the actor cannot even view reports
// ErrNotFound rather than ErrPermissionDenied, so drafts never leak
// their existence.
func Publish(db *gorm.DB, actor *models.User, item models.Item) error {
	f := item.Content()
	perms := ResolveVisibility(f, ViewerFor(actor))
	if f.Published() {
		if !perms.CanView {
			return ErrNotFound
		}
		return nil
	}
	if !perms.CanPublish {
		if !perms.CanView {
			return ErrNotFound
		}
		return ErrPermissionDenied
	}
	f.Visibility = models.VisibilityClass
	f.Approved = true
	return db.Save(item).Error
}

// Approve is the moderation-queue action: staff marks a draft approved
// without changing its visibility. A team-visibility item approved this
// way stays restricted to its team.
func Approve(db *gorm.DB, actor *models.User, item models.Item) error {
	if !actor.IsStaff() {
		return ErrPermissionDenied
	}
	item.Content().Approved = true
	return db.Save(item).Error
}
