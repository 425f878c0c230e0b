package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PeriodAM = "am"
	PeriodPM = "pm"

	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

type AttributeDefinition struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string    `gorm:"type:varchar(128);index;not null" json:"name"`
	Label          string    `gorm:"type:varchar(255);not null" json:"label"`
	Unit           *string   `gorm:"type:varchar(64)" json:"unit"`
	Category       *string   `gorm:"type:varchar(64)" json:"category"`
	Active         bool      `gorm:"not null" json:"active"`
	DefaultVisible bool      `gorm:"not null" json:"default_visible"`
	Weight         float64   `gorm:"not null;default:1" json:"weight"`
	DayPeriod      string    `gorm:"type:varchar(2);not null;default:am" json:"day_period"`
	CreatedAt      time.Time `json:"created_at"`
}

type Entry struct {
	ID         string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Date       string      `gorm:"type:varchar(10);index;not null" json:"date"`
	DayPeriod  string      `gorm:"type:varchar(2);not null;default:am" json:"day_period"`
	Visibility string      `gorm:"type:varchar(16);index;not null" json:"visibility"`
	Attributes []Attribute `gorm:"foreignKey:EntryID" json:"attributes"`
	Notes      []Note      `gorm:"foreignKey:EntryID" json:"notes"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Attribute struct {
	ID       string  `gorm:"primaryKey;type:varchar(36)" json:"-"`
	EntryID  string  `gorm:"type:varchar(36);index;not null" json:"-"`
	Position int     `gorm:"not null" json:"-"`
	Name     string  `gorm:"type:varchar(128);not null" json:"name"`
	Value    string  `gorm:"type:text" json:"value"`
	Unit     *string `gorm:"type:varchar(64)" json:"unit,omitempty"`
	Note     *string `gorm:"type:text" json:"note,omitempty"`
}

type Note struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EntryID   string    `gorm:"type:varchar(36);index;not null" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (AttributeDefinition) TableName() string { return "attribute_definitions" }
func (Entry) TableName() string               { return "daily_entries" }
func (Attribute) TableName() string           { return "entry_attributes" }
func (Note) TableName() string                { return "entry_notes" }

func (d *AttributeDefinition) BeforeCreate(*gorm.DB) error { assignID(&d.ID); return nil }
func (e *Entry) BeforeCreate(*gorm.DB) error               { assignID(&e.ID); return nil }
func (a *Attribute) BeforeCreate(*gorm.DB) error           { assignID(&a.ID); return nil }
func (n *Note) BeforeCreate(*gorm.DB) error                { assignID(&n.ID); return nil }

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All lists every table owned by the API, in migration order.
func All() []any {
	return []any{
		&AttributeDefinition{}, &Entry{}, &Attribute{}, &Note{},
		&WhoopRecovery{}, &WhoopSleep{}, &WhoopWorkout{},
	}
}
