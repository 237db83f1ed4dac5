// Package analysis classifies recognized ingredient text against the
// ingredient reference table.
package analysis

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/franckalain/halalscan/internal/ingredients"
	"github.com/franckalain/halalscan/internal/models"
)

// Confidence values reported with a verdict
const (
	NoMatchConfidence = 75
)

var statusConfidence = map[models.Status]int{
	models.StatusHalal:      85,
	models.StatusSuspicious: 70,
	models.StatusHaram:      95,
}

// User facing messages
const (
	noMatchName       = "لم يتم العثور على مكونات مشبوهة"
	noMatchReason     = "المكونات الظاهرة لا تحتوي على مواد محرمة معروفة"
	noMatchMainReason = "لم يتم العثور على مكونات مشبوهة أو محرمة في النص"
	allHalalReason    = "جميع المكونات المكتشفة حلال"
	haramPrefix       = "يحتوي على مكونات محرمة: "
	suspiciousPrefix  = "يحتوي على مكونات مشبوهة تحتاج للتحقق: "
	namesSeparator    = "، "
)

// Engine matches text against a reference table. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	table *ingredients.Table
	terms [][2]string // lower-cased name and alternate, by table index
}

// NewEngine prepares an engine for the given table
func NewEngine(table *ingredients.Table) *Engine {
	e := &Engine{table: table}
	lower := cases.Lower(language.Und)
	table.Each(func(entry models.IngredientEntry) {
		e.terms = append(e.terms, [2]string{
			lower.String(entry.Name),
			lower.String(entry.NameAlternate),
		})
	})
	return e
}

// Analyze returns the verdict for text. It never fails: an empty or
// unrecognized text yields a halal verdict with lower confidence.
func (e *Engine) Analyze(text string) models.AnalysisResult {
	haystack := cases.Lower(language.Und).String(text)

	var detected []models.DetectedIngredient
	worst := models.StatusHalal
	i := 0
	e.table.Each(func(entry models.IngredientEntry) {
		terms := e.terms[i]
		i++
		if !matches(haystack, terms) {
			return
		}
		detected = append(detected, models.DetectedIngredient{
			Name:   entry.Name,
			Status: entry.Status,
			Reason: entry.Reason,
		})
		worst = models.Worst(worst, entry.Status)
	})

	if len(detected) == 0 {
		return models.AnalysisResult{
			Status:     models.StatusHalal,
			Confidence: NoMatchConfidence,
			Ingredients: []models.DetectedIngredient{{
				Name:   noMatchName,
				Status: models.StatusHalal,
				Reason: noMatchReason,
			}},
			MainReason:   noMatchMainReason,
			DetectedText: text,
		}
	}

	return models.AnalysisResult{
		Status:       worst,
		Confidence:   statusConfidence[worst],
		Ingredients:  detected,
		MainReason:   mainReason(worst, detected),
		DetectedText: text,
	}
}

func matches(haystack string, terms [2]string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

// mainReason names the ingredients responsible for the worst status
func mainReason(worst models.Status, detected []models.DetectedIngredient) string {
	var prefix string
	switch worst {
	case models.StatusHaram:
		prefix = haramPrefix
	case models.StatusSuspicious:
		prefix = suspiciousPrefix
	default:
		return allHalalReason
	}

	var names []string
	for _, d := range detected {
		if d.Status == worst {
			names = append(names, d.Name)
		}
	}
	return prefix + strings.Join(names, namesSeparator)
}
