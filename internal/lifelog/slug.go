// Package lifelog holds the pure logic shared by the API server and the
// terminal client: slug derivation, entry grouping, the entry editor, the
// charts range filter, trend fitting and the WHOOP analytics.
package lifelog

import (
	"regexp"
	"strings"

	"github.com/jkor2/lifeof/internal/model"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
	nonWord       = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// Slug turns a free-text label into an attribute name: "Resting HR!" -> "resting_hr".
// Two labels may collapse to the same slug; callers do not check for it.
func Slug(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = whitespaceRun.ReplaceAllString(s, "_")
	return nonWord.ReplaceAllString(s, "")
}

// NormalizePeriod lowercases p and defaults an empty period to "am".
func NormalizePeriod(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return model.PeriodAM
	}
	return p
}

func ValidPeriod(p string) bool {
	return p == model.PeriodAM || p == model.PeriodPM
}

func ValidVisibility(v string) bool {
	return v == model.VisibilityPrivate || v == model.VisibilityPublic
}

// Toggle flips public <-> private. Anything that is not public becomes public.
func Toggle(visibility string) string {
	if visibility == model.VisibilityPublic {
		return model.VisibilityPrivate
	}
	return model.VisibilityPublic
}
