package service

import (
	"context"
	"testing"

	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestAttributeCreateDerivesName(t *testing.T) {
	svc := NewAttributeService(testutil.NewDB(t))
	ctx := context.Background()

	d, err := svc.Create(ctx, model.AttributeDefinitionInput{Label: "Resting HR", Unit: ptr("bpm")})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "resting_hr", d.Name)
	assert.Equal(t, "am", d.DayPeriod)
	assert.True(t, d.Active)
	assert.True(t, d.DefaultVisible)
	assert.Equal(t, 1.0, d.Weight)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Resting HR", list[0].Label)
	assert.Equal(t, "bpm", *list[0].Unit)
}

func TestAttributeCreateValidation(t *testing.T) {
	svc := NewAttributeService(testutil.NewDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, model.AttributeDefinitionInput{Label: "  "})
	assert.True(t, IsInvalid(err))

	_, err = svc.Create(ctx, model.AttributeDefinitionInput{Label: "!!!"})
	assert.True(t, IsInvalid(err), "label that slugs to nothing")

	_, err = svc.Create(ctx, model.AttributeDefinitionInput{Label: "Mood", DayPeriod: "noon"})
	assert.EqualError(t, err, "day_period must be 'am' or 'pm'")
}

func TestAttributeUpdateAndDelete(t *testing.T) {
	svc := NewAttributeService(testutil.NewDB(t))
	ctx := context.Background()

	d, err := svc.Create(ctx, model.AttributeDefinitionInput{Label: "Mood", DayPeriod: "PM", Category: ptr("mind")})
	require.NoError(t, err)
	assert.Equal(t, "pm", d.DayPeriod)

	up, err := svc.Update(ctx, d.ID, model.AttributeDefinitionInput{
		Name: "mood", Label: "Evening mood", DayPeriod: "pm", Active: ptr(false), DefaultVisible: ptr(false), Weight: ptr(2.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Evening mood", up.Label)

	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.False(t, got.DefaultVisible)
	assert.Equal(t, 2.5, got.Weight)
	assert.Nil(t, got.Category, "omitted category is cleared")

	_, err = svc.Update(ctx, "missing", model.AttributeDefinitionInput{Label: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, d.ID))
	assert.ErrorIs(t, svc.Delete(ctx, d.ID), ErrNotFound)
}

func TestAttributeListOrder(t *testing.T) {
	svc := NewAttributeService(testutil.NewDB(t))
	ctx := context.Background()
	for _, in := range []model.AttributeDefinitionInput{
		{Label: "Zinc", Category: ptr("a"), DayPeriod: "pm"},
		{Label: "Weight", Category: ptr("a")},
		{Label: "Apple", Category: ptr("b")},
		{Label: "Coffee", Category: ptr("a")},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	list, err := svc.List(ctx)
	require.NoError(t, err)
	var labels []string
	for _, d := range list {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"Coffee", "Weight", "Zinc", "Apple"}, labels)
}
