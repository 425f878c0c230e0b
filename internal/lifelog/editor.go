package lifelog

import (
	"errors"
	"strings"

	"github.com/jkor2/lifeof/internal/model"
)

var (
	ErrAttributeAlreadyAdded = errors.New("this attribute is already added")
	ErrUnknownAttribute      = errors.New("unknown attribute")
	ErrInvalidPeriod         = errors.New("day_period must be 'am' or 'pm'")
	ErrDateRequired          = errors.New("please pick a date first")
	ErrEntryNotSaved         = errors.New("please save the entry before adding notes")
	ErrEmptyNote             = errors.New("note cannot be empty")
)

// Editor is the state behind the new/edit entry screen. Rows of both
// periods live side by side; only the current period's rows are visible
// and only those are submitted.
type Editor struct {
	defs    []model.AttributeDefinition
	byName  map[string]model.AttributeDefinition
	period  string
	rows    []model.Attribute
	editing bool
	saved   map[string]string // rows loaded from an entry -> that entry's period
}

// NewEditor starts a blank entry with one empty row per active,
// default-visible definition of period.
func NewEditor(defs []model.AttributeDefinition, period string) (*Editor, error) {
	e, err := newEditor(defs, period)
	if err != nil {
		return nil, err
	}
	e.seedDefaults()
	return e, nil
}

// EditEntry loads a saved entry's rows as they are. They stay in the
// entry's period even when their definition has since moved to the other one.
func EditEntry(defs []model.AttributeDefinition, entry model.Entry) (*Editor, error) {
	e, err := newEditor(defs, entry.DayPeriod)
	if err != nil {
		return nil, err
	}
	e.editing = true
	for _, a := range entry.Attributes {
		e.saved[a.Name] = e.period
		e.rows = append(e.rows, a)
	}
	return e, nil
}

func newEditor(defs []model.AttributeDefinition, period string) (*Editor, error) {
	period = NormalizePeriod(period)
	if !ValidPeriod(period) {
		return nil, ErrInvalidPeriod
	}
	e := &Editor{
		byName:  make(map[string]model.AttributeDefinition),
		saved:   make(map[string]string),
		period:  period,
	}
	for _, d := range defs {
		if !d.Active {
			continue
		}
		e.defs = append(e.defs, d)
		e.byName[d.Name] = d
	}
	return e, nil
}

func (e *Editor) Period() string { return e.period }

// SetPeriod switches the visible period. Values typed for the other period
// stay in memory. A new entry also gains the default rows of the new period.
func (e *Editor) SetPeriod(p string) error {
	p = NormalizePeriod(p)
	if !ValidPeriod(p) {
		return ErrInvalidPeriod
	}
	e.period = p
	if !e.editing {
		e.seedDefaults()
	}
	return nil
}

func (e *Editor) seedDefaults() {
	for _, d := range e.defs {
		if d.DefaultVisible && NormalizePeriod(d.DayPeriod) == e.period && !e.has(d.Name) {
			e.rows = append(e.rows, emptyRow(d))
		}
	}
}

// Visible returns the rows of the current period in insertion order.
func (e *Editor) Visible() []model.Attribute {
	return e.rowsFor(e.period)
}

// Hidden returns rows held for the other period.
func (e *Editor) Hidden() []model.Attribute {
	var out []model.Attribute
	for _, r := range e.rows {
		if e.periodOf(r.Name) != e.period {
			out = append(out, r)
		}
	}
	return out
}

// Options lists the definitions that may still be added for the current period.
func (e *Editor) Options() []model.AttributeDefinition {
	var out []model.AttributeDefinition
	for _, d := range e.defs {
		if NormalizePeriod(d.DayPeriod) == e.period && !e.has(d.Name) {
			out = append(out, d)
		}
	}
	return out
}

func (e *Editor) AddOptional(name string) error {
	d, ok := e.byName[name]
	if !ok {
		return ErrUnknownAttribute
	}
	if e.has(name) {
		return ErrAttributeAlreadyAdded
	}
	e.rows = append(e.rows, emptyRow(d))
	return nil
}

// Set stores value on a visible row.
func (e *Editor) Set(name, value string) error {
	for i := range e.rows {
		if e.rows[i].Name == name && e.periodOf(name) == e.period {
			e.rows[i].Value = value
			return nil
		}
	}
	return ErrUnknownAttribute
}

// Payload builds the save request for the current period.
func (e *Editor) Payload(date, visibility string) (model.EntryInput, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return model.EntryInput{}, ErrDateRequired
	}
	if visibility == "" {
		visibility = model.VisibilityPrivate
	}
	attrs := e.Visible()
	if attrs == nil {
		attrs = []model.Attribute{}
	}
	return model.EntryInput{
		Date:       date,
		Visibility: visibility,
		DayPeriod:  e.period,
		Attributes: attrs,
	}, nil
}

func (e *Editor) rowsFor(period string) []model.Attribute {
	var out []model.Attribute
	for _, r := range e.rows {
		if e.periodOf(r.Name) == period {
			out = append(out, r)
		}
	}
	return out
}

// periodOf resolves a row's period. Rows loaded from a saved entry keep
// that entry's period, others follow their definition, anything else counts as AM.
func (e *Editor) periodOf(name string) string {
	if p, ok := e.saved[name]; ok {
		return p
	}
	if d, ok := e.byName[name]; ok {
		return NormalizePeriod(d.DayPeriod)
	}
	return model.PeriodAM
}

func (e *Editor) has(name string) bool {
	for _, r := range e.rows {
		if r.Name == name {
			return true
		}
	}
	return false
}

func emptyRow(d model.AttributeDefinition) model.Attribute {
	row := model.Attribute{Name: d.Name}
	if d.Unit != nil && *d.Unit != "" {
		u := *d.Unit
		row.Unit = &u
	}
	return row
}

// NoteTarget picks the entry a note goes to: the editor's entry, else the
// id remembered from the last save. It never touches the network.
func NoteTarget(entryID, fallbackID, content string) (string, error) {
	id := entryID
	if id == "" {
		id = fallbackID
	}
	if id == "" {
		return "", ErrEntryNotSaved
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyNote
	}
	return id, nil
}
