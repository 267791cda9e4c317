// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HeaderChoice is the tri-state answer to the header-row question.
type HeaderChoice int

const (
	HeaderUnset HeaderChoice = iota
	HeaderPresent
	HeaderAbsent
)

// DataType classifies a feature as numerical or categorical.
type DataType string

const (
	TypeNumerical   DataType = "N"
	TypeCategorical DataType = "C"
)

// TargetType is the user-declared type of the target feature.
type TargetType string

const (
	TargetNumerical   TargetType = "numerical"
	TargetCategorical TargetType = "categorical"
)

// MissingIndicators configures which raw values count as missing.
type MissingIndicators struct {
	Blanks       bool   `json:"blanks"`
	NA           bool   `json:"na"`
	Custom       bool   `json:"custom"`
	CustomTokens string `json:"custom_tokens"`
}

// Tokens splits the custom token text on commas, dropping empty entries.
func (mi MissingIndicators) Tokens() []string {
	if !mi.Custom {
		return nil
	}
	parts := strings.Split(mi.CustomTokens, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// Valid reports whether at least one indicator is active, with non-empty
// token text when the custom indicator is on.
func (mi MissingIndicators) Valid() bool {
	if mi.Custom && len(mi.Tokens()) == 0 {
		return false
	}
	return mi.Blanks || mi.NA || (mi.Custom && len(mi.Tokens()) > 0)
}

// WizardConfig accumulates the onboarding answers.
type WizardConfig struct {
	HeaderRow     HeaderChoice
	Indicators    MissingIndicators
	TargetFeature string
	TargetType    TargetType
}

// HasHeaderRow resolves the header choice to a bool for wire payloads.
func (c WizardConfig) HasHeaderRow() bool {
	return c.HeaderRow == HeaderPresent
}

// Cell is a single preview grid value with its missingness flag.
type Cell struct {
	Value   string `json:"value"`
	Missing bool   `json:"missing"`
}

// PreviewGrid is the sampled dataset preview returned by the service.
type PreviewGrid struct {
	TitleRow []string `json:"title_row"`
	DataRows [][]Cell `json:"data_rows"`
}

// CorrelationKind identifies the statistic behind a correlation entry.
type CorrelationKind string

const (
	KindPearson CorrelationKind = "r"
	KindCramerV CorrelationKind = "V"
	KindEta     CorrelationKind = "η"
)

// UnmarshalJSON accepts both the short wire symbols and the long names.
func (k *CorrelationKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode correlation type: %w", err)
	}
	switch s {
	case "r", "pearson_r":
		*k = KindPearson
	case "V", "cramers_v":
		*k = KindCramerV
	case "η", "eta", "eta_squared":
		*k = KindEta
	default:
		return fmt.Errorf("unknown correlation type %q", s)
	}
	return nil
}

// CorrelationEntry is one correlation partner of a feature.
type CorrelationEntry struct {
	FeatureName string          `json:"feature_name"`
	Value       float64         `json:"correlation_value"`
	Kind        CorrelationKind `json:"correlation_type"`
	PValue      float64         `json:"p_value"`
}

// Informative describes whether a feature's missingness relates to the target.
type Informative struct {
	IsInformative bool    `json:"is_informative"`
	PValue        float64 `json:"p_value"`
}

// FeatureRecord is one dashboard row: base missingness stats plus the
// per-feature analysis as it arrives.
type FeatureRecord struct {
	Name              string   `json:"feature_name"`
	DataType          DataType `json:"data_type"`
	MissingCount      int      `json:"number_missing"`
	MissingPercentage float64  `json:"percentage_missing"`

	Correlated  []CorrelationEntry `json:"-"`
	Informative *Informative       `json:"-"`

	LoadingCorrelation bool   `json:"-"`
	LoadingInformative bool   `json:"-"`
	AnalysisErr        string `json:"-"`
}

// MostCorrelated returns the strongest correlation partner, or nil.
// Entries arrive sorted by descending absolute strength.
func (f *FeatureRecord) MostCorrelated() *CorrelationEntry {
	if len(f.Correlated) == 0 {
		return nil
	}
	return &f.Correlated[0]
}

// Thresholds carries the three correlation cutoffs sent with analysis requests.
type Thresholds struct {
	Pearson float64
	CramerV float64
	Eta     float64
}

// DefaultThresholds mirrors the service defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Pearson: 0.7, CramerV: 0.7, Eta: 0.7}
}

// Pagination is the server-driven paging envelope.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Recommendation groups features that share a treatment suggestion.
type Recommendation struct {
	Type     string   `json:"recommendation_type"`
	Features []string `json:"features"`
	Reason   string   `json:"reason"`
}

// Mechanism is the dataset-level missingness classification.
type Mechanism struct {
	Mechanism string  `json:"mechanism"`
	PValue    float64 `json:"p_value"`
}

// CaseSummary is the dashboard case-count card data.
type CaseSummary struct {
	TotalCases        int     `json:"total_cases"`
	MissingPercentage float64 `json:"missing_percentage"`
}

// FeatureSummary is the dashboard feature-count card data.
type FeatureSummary struct {
	FeaturesWithMissing      int     `json:"features_with_missing"`
	MissingFeaturePercentage float64 `json:"missing_feature_percentage"`
}

// UploadRecord is a locally remembered upload and its last wizard answers.
type UploadRecord struct {
	ID         int64
	Path       string
	Filename   string
	UploadedAt time.Time
	Config     WizardConfig
}
