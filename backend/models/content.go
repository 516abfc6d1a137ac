package models

import "gorm.io/gorm"

const (
	VisibilityTeam   = "team"
	VisibilityClass  = "class"
	VisibilityGlobal = "global"
)

// ContentFields is the shared shape of every content type (docs, policies,
// diagrams). Access rules operate on these fields only, so the permission
// logic is written once and reused by all three stores.
type ContentFields struct {
	Title      string `gorm:"not null"`
	Slug       string `gorm:"uniqueIndex;not null"`
	Body       string `gorm:"type:text"`
	Visibility string `gorm:"default:team"` // team, class, global
	Approved   bool   `gorm:"default:false"`
	OwnerID    *uint
	TeamID     *uint
}

func (f *ContentFields) Content() *ContentFields { return f }

// Published means visible to the whole class (or everyone, for global items).
func (f *ContentFields) Published() bool {
	return f.Approved && (f.Visibility == VisibilityClass || f.Visibility == VisibilityGlobal)
}

// Item is implemented by every content type via the embedded ContentFields.
type Item interface {
	Content() *ContentFields
}

type Category struct {
	gorm.Model
	Name string `gorm:"unique;not null"`
	Slug string `gorm:"uniqueIndex;not null"`
}

type DocPage struct {
	gorm.Model
	ContentFields
	CategoryID *uint
	Category   *Category
}

// PolicyCategories maps policy category codes to display labels.
var PolicyCategories = map[string]string{
	"IR": "Incident Response",
	"AC": "Access Control",
	"LM": "Log Management",
	"CC": "Change Control",
	"NW": "Network Security",
	"BK": "Backup & Recovery",
	"OT": "Other",
}

type Policy struct {
	gorm.Model
	ContentFields
	CategoryCode string `gorm:"size:2;default:OT"`
	Version      string `gorm:"size:20;default:1.0"`
}

type Diagram struct {
	gorm.Model
	ContentFields
	FossflowURL string
}
