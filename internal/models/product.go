package models

// Status is the halal classification of an ingredient or a whole product
type Status string

const (
	StatusHalal      Status = "halal"
	StatusSuspicious Status = "suspicious"
	StatusHaram      Status = "haram"
)

// Statuses lists every known status in increasing order of severity
var Statuses = []Status{StatusHalal, StatusSuspicious, StatusHaram}

// Rank returns the severity of the status. Unknown statuses rank below halal.
func (s Status) Rank() int {
	switch s {
	case StatusHalal:
		return 0
	case StatusSuspicious:
		return 1
	case StatusHaram:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// Worst returns the more severe of two statuses
func Worst(a, b Status) Status {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// IngredientEntry is one row of the ingredient reference table
type IngredientEntry struct {
	Name          string `json:"name" yaml:"name" validate:"required"`
	NameAlternate string `json:"name_en" yaml:"name_en"`
	Status        Status `json:"status" yaml:"status" validate:"required,oneof=halal suspicious haram"`
	Reason        string `json:"reason" yaml:"reason" validate:"required"`
}

// DetectedIngredient is a reference table entry found in the analyzed text
type DetectedIngredient struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// AnalysisResult is the verdict produced for one piece of recognized text
type AnalysisResult struct {
	Status       Status               `json:"status"`
	Confidence   int                  `json:"confidence"` // percent
	Ingredients  []DetectedIngredient `json:"ingredients"`
	MainReason   string               `json:"mainReason"`
	DetectedText string               `json:"detectedText"`
}

// ScanHistoryRecord is one persisted scan
type ScanHistoryRecord struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"` // epoch milliseconds
	Image     string         `json:"image"`     // data URL of the captured image
	Result    AnalysisResult `json:"result"`
}
