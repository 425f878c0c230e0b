package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntryService struct{ db *gorm.DB }

func NewEntryService(db *gorm.DB) *EntryService { return &EntryService{db: db} }

func (s *EntryService) preload(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
}

// List returns entries newest date first, optionally only one visibility.
func (s *EntryService) List(ctx context.Context, visibility string) ([]model.Entry, error) {
	q := s.preload(s.db.WithContext(ctx)).Order("date DESC, day_period, created_at")
	if visibility != "" {
		if !lifelog.ValidVisibility(visibility) {
			return nil, InvalidError("visibility must be 'public' or 'private'")
		}
		q = q.Where("visibility = ?", visibility)
	}
	entries := []model.Entry{}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (s *EntryService) Get(ctx context.Context, id string) (*model.Entry, error) {
	var e model.Entry
	err := s.preload(s.db.WithContext(ctx)).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

func (s *EntryService) Create(ctx context.Context, in model.EntryInput) (*model.Entry, error) {
	e := model.Entry{}
	if err := fill(&e, in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&e).Error; err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return insertAttributes(tx, e.ID, e.Attributes)
	})
	if err != nil {
		return nil, err
	}
	e.Notes = []model.Note{}
	logger.Info("entry.created", "id", e.ID, "date", e.Date, "period", e.DayPeriod, "attributes", len(e.Attributes))
	return &e, nil
}

// Update replaces date, period, visibility and the full attribute list.
// Notes are left alone.
func (s *EntryService) Update(ctx context.Context, id string, in model.EntryInput) (*model.Entry, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fill(e, in); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Entry{}).Where("id = ?", id).Updates(map[string]any{
			"date":       e.Date,
			"day_period": e.DayPeriod,
			"visibility": e.Visibility,
		}).Error; err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if err := tx.Where("entry_id = ?", id).Delete(&model.Attribute{}).Error; err != nil {
			return fmt.Errorf("clear attributes: %w", err)
		}
		return insertAttributes(tx, id, e.Attributes)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("entry.updated", "id", id, "attributes", len(e.Attributes))
	return e, nil
}

func (s *EntryService) SetVisibility(ctx context.Context, id, visibility string) error {
	if !lifelog.ValidVisibility(visibility) {
		return InvalidError("visibility must be 'public' or 'private'")
	}
	res := s.db.WithContext(ctx).Model(&model.Entry{}).Where("id = ?", id).Update("visibility", visibility)
	if res.Error != nil {
		return fmt.Errorf("update visibility: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 rows when the value is unchanged.
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	logger.Info("entry.visibility", "id", id, "visibility", visibility)
	return nil
}

// Delete removes the entry with its attributes and notes.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Entry{})
		if res.Error != nil {
			return fmt.Errorf("delete entry: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("entry_id = ?", id).Delete(&model.Attribute{}).Error; err != nil {
			return fmt.Errorf("delete attributes: %w", err)
		}
		if err := tx.Where("entry_id = ?", id).Delete(&model.Note{}).Error; err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		logger.Info("entry.deleted", "id", id)
		return nil
	})
}

func (s *EntryService) AddNote(ctx context.Context, entryID, content string) (*model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, InvalidError("Note cannot be empty.")
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Entry{}).Where("id = ?", entryID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("lookup entry: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	note := model.Note{EntryID: entryID, Content: content, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	logger.Info("entry.note_added", "entry_id", entryID, "note_id", note.ID)
	return &note, nil
}

func fill(e *model.Entry, in model.EntryInput) error {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		return InvalidError("date is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return InvalidError("date must be YYYY-MM-DD")
	}
	period := lifelog.NormalizePeriod(in.DayPeriod)
	if !lifelog.ValidPeriod(period) {
		return InvalidError("day_period must be 'am' or 'pm'")
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityPrivate
	}
	if !lifelog.ValidVisibility(visibility) {
		return InvalidError("visibility must be 'public' or 'private'")
	}

	attrs := make([]model.Attribute, 0, len(in.Attributes))
	for _, a := range in.Attributes {
		if strings.TrimSpace(a.Name) == "" {
			return InvalidError("attribute name is required")
		}
		attrs = append(attrs, model.Attribute{Name: a.Name, Value: a.Value, Unit: a.Unit, Note: a.Note})
	}

	e.Date = date
	e.DayPeriod = period
	e.Visibility = visibility
	e.Attributes = attrs
	return nil
}

func insertAttributes(tx *gorm.DB, entryID string, attrs []model.Attribute) error {
	if len(attrs) == 0 {
		return nil
	}
	for i := range attrs {
		attrs[i].ID = ""
		attrs[i].EntryID = entryID
		attrs[i].Position = i
	}
	if err := tx.Create(&attrs).Error; err != nil {
		return fmt.Errorf("insert attributes: %w", err)
	}
	return nil
}
