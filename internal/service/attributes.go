package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jkor2/lifeof/internal/lifelog"
	"github.com/jkor2/lifeof/internal/logger"
	"github.com/jkor2/lifeof/internal/model"

	"gorm.io/gorm"
)

type AttributeService struct{ db *gorm.DB }

func NewAttributeService(db *gorm.DB) *AttributeService { return &AttributeService{db: db} }

func (s *AttributeService) List(ctx context.Context) ([]model.AttributeDefinition, error) {
	defs := []model.AttributeDefinition{}
	if err := s.db.WithContext(ctx).Order("category, day_period, label").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("list attribute definitions: %w", err)
	}
	return defs, nil
}

func (s *AttributeService) Get(ctx context.Context, id string) (*model.AttributeDefinition, error) {
	var d model.AttributeDefinition
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attribute definition: %w", err)
	}
	return &d, nil
}

func (s *AttributeService) Create(ctx context.Context, in model.AttributeDefinitionInput) (*model.AttributeDefinition, error) {
	var d model.AttributeDefinition
	if err := apply(&d, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, fmt.Errorf("insert attribute definition: %w", err)
	}
	logger.Info("attribute.created", "id", d.ID, "name", d.Name, "period", d.DayPeriod)
	return &d, nil
}

// Update replaces every field of the definition; omitted optionals fall
// back to their defaults, as on create.
func (s *AttributeService) Update(ctx context.Context, id string, in model.AttributeDefinitionInput) (*model.AttributeDefinition, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(d, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Select("*").Omit("created_at").Updates(d).Error; err != nil {
		return nil, fmt.Errorf("update attribute definition: %w", err)
	}
	logger.Info("attribute.updated", "id", d.ID, "name", d.Name)
	return d, nil
}

func (s *AttributeService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AttributeDefinition{})
	if res.Error != nil {
		return fmt.Errorf("delete attribute definition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	logger.Info("attribute.deleted", "id", id)
	return nil
}

func apply(d *model.AttributeDefinition, in model.AttributeDefinitionInput) error {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return InvalidError("Missing required field: label")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = lifelog.Slug(label)
	}
	if name == "" {
		return InvalidError("Missing required field: name")
	}
	period := lifelog.NormalizePeriod(in.DayPeriod)
	if !lifelog.ValidPeriod(period) {
		return InvalidError("day_period must be 'am' or 'pm'")
	}

	d.Name = name
	d.Label = label
	d.Unit = blankToNil(in.Unit)
	d.Category = blankToNil(in.Category)
	d.Active = boolOr(in.Active, true)
	d.DefaultVisible = boolOr(in.DefaultVisible, true)
	d.Weight = 1
	if in.Weight != nil {
		d.Weight = *in.Weight
	}
	d.DayPeriod = period
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
