package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jkor2/lifeof/internal/model"
	"github.com/jkor2/lifeof/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleInput() model.EntryInput {
	return model.EntryInput{
		Date:      "2024-01-15",
		DayPeriod: "pm",
		Attributes: []model.Attribute{
			{Name: "mood", Value: "good"},
			{Name: "resting_hr", Value: "52", Unit: ptr("bpm")},
			{Name: "alcohol", Value: "0", Note: ptr("dry january")},
		},
	}
}

func TestEntryCreateAndGet(t *testing.T) {
	svc := NewEntryService(testutil.NewDB(t))
	ctx := context.Background()

	e, err := svc.Create(ctx, sampleInput())
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "private", e.Visibility)
	assert.NotNil(t, e.Notes)

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got.Date)
	assert.Equal(t, "pm", got.DayPeriod)
	require.Len(t, got.Attributes, 3)
	assert.Equal(t, "mood", got.Attributes[0].Name)
	assert.Equal(t, "resting_hr", got.Attributes[1].Name)
	assert.Equal(t, "bpm", *got.Attributes[1].Unit)
	assert.Equal(t, "dry january", *got.Attributes[2].Note)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryCreateValidation(t *testing.T) {
	svc := NewEntryService(testutil.NewDB(t))
	ctx := context.Background()

	cases := map[string]model.EntryInput{
		"no date":        {DayPeriod: "am"},
		"bad date":       {Date: "15/01/2024"},
		"bad period":     {Date: "2024-01-15", DayPeriod: "noon"},
		"bad visibility": {Date: "2024-01-15", Visibility: "friends"},
		"nameless attr":  {Date: "2024-01-15", Attributes: []model.Attribute{{Value: "1"}}},
	}
	for name, in := range cases {
		_, err := svc.Create(ctx, in)
		assert.True(t, IsInvalid(err), name)
	}
}

func TestEntryVisibilityToggleSurvivesReload(t *testing.T) {
	svc := NewEntryService(testutil.NewDB(t))
	ctx := context.Background()

	e, err := svc.Create(ctx, sampleInput())
	require.NoError(t, err)
	require.Equal(t, "private", e.Visibility)

	require.NoError(t, svc.SetVisibility(ctx, e.ID, "public"))
	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "public", got.Visibility)

	public, err := svc.List(ctx, "public")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, e.ID, public[0].ID)

	private, err := svc.List(ctx, "private")
	require.NoError(t, err)
	assert.Empty(t, private)

	assert.True(t, IsInvalid(svc.SetVisibility(ctx, e.ID, "everyone")))
	assert.ErrorIs(t, svc.SetVisibility(ctx, "nope", "public"), ErrNotFound)
}

func TestEntryListOrderAndFilter(t *testing.T) {
	svc := NewEntryService(testutil.NewDB(t))
	ctx := context.Background()
	for _, in := range []model.EntryInput{
		{Date: "2024-01-14", DayPeriod: "am"},
		{Date: "2024-01-16", DayPeriod: "pm"},
		{Date: "2024-01-16", DayPeriod: "am", Visibility: "public"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01-16", all[0].Date)
	assert.Equal(t, "am", all[0].DayPeriod)
	assert.Equal(t, "2024-01-14", all[2].Date)

	_, err = svc.List(ctx, "secret")
	assert.True(t, IsInvalid(err))
}

func TestEntryUpdateReplacesAttributes(t *testing.T) {
	svc := NewEntryService(testutil.NewDB(t))
	ctx := context.Background()

	e, err := svc.Create(ctx, sampleInput())
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, e.ID, "kept")
	require.NoError(t, err)

	_, err = svc.Update(ctx, e.ID, model.EntryInput{
		Date: "2024-01-16", DayPeriod: "am", Visibility: "public",
		Attributes: []model.Attribute{{Name: "weight", Value: "80"}},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16", got.Date)
	assert.Equal(t, "am", got.DayPeriod)
	assert.Equal(t, "public", got.Visibility)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, "weight", got.Attributes[0].Name)
	require.Len(t, got.Notes, 1)

	_, err = svc.Update(ctx, "nope", sampleInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryNotes(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewEntryService(db)
	ctx := context.Background()

	e, err := svc.Create(ctx, sampleInput())
	require.NoError(t, err)

	first, err := svc.AddNote(ctx, e.ID, "  slept badly ")
	require.NoError(t, err)
	assert.Equal(t, "slept badly", first.Content)
	// force distinct timestamps
	require.NoError(t, db.Model(first).Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)

	_, err = svc.AddNote(ctx, e.ID, "better now")
	require.NoError(t, err)

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, "better now", got.Notes[0].Content, "newest first")

	_, err = svc.AddNote(ctx, e.ID, "   ")
	assert.True(t, IsInvalid(err))
	_, err = svc.AddNote(ctx, "nope", "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewEntryService(db)
	ctx := context.Background()

	e, err := svc.Create(ctx, sampleInput())
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, e.ID, "bye")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, e.ID))

	var attrs, notes int64
	db.Model(&model.Attribute{}).Count(&attrs)
	db.Model(&model.Note{}).Count(&notes)
	assert.Zero(t, attrs)
	assert.Zero(t, notes)

	assert.ErrorIs(t, svc.Delete(ctx, e.ID), ErrNotFound)
}

func TestExportWorkbook(t *testing.T) {
	entries := NewEntryService(testutil.NewDB(t))
	ctx := context.Background()
	_, err := entries.Create(ctx, sampleInput())
	require.NoError(t, err)
	_, err = entries.Create(ctx, model.EntryInput{Date: "2024-01-16"})
	require.NoError(t, err)

	data, err := NewExportService(entries).Workbook(ctx, "")
	require.NoError(t, err)
	rows := readSheet(t, data)
	require.Len(t, rows, 1+3+1)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "2024-01-16", rows[1][0])
	assert.Equal(t, "mood", rows[2][3])
	assert.Equal(t, "bpm", rows[3][5])
}

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	return rows
}
