// Package domain holds DTOs for annotate http and service contracts
package domain

// AnalyzeInput is the input for annotating a single text
type AnalyzeInput struct {
	Text string `json:"text" validate:"required,max=10000" example:"Paziente con diabete mellito in terapia insulinica"`

	// ConfidenceThreshold overrides the pipeline default when present.
	// Out-of-range values are clamped, never rejected
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty" example:"0.6"`

	// IncludeSource adds the detection source to each entity
	IncludeSource bool `json:"include_source,omitempty" example:"true"`
}

// BatchInput is the input for annotating up to 100 texts in one call
type BatchInput struct {
	Texts               []string `json:"texts" validate:"required,min=1,max=100,dive,max=10000"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty" example:"0.6"`
	IncludeSource       bool     `json:"include_source,omitempty"`
}

// Entity is one detected clinical mention
type Entity struct {
	Text       string  `json:"text" example:"diabete mellito"`
	Label      string  `json:"label" example:"PROBLEM"`
	Start      int     `json:"start" example:"13"`
	End        int     `json:"end" example:"28"`
	Confidence float64 `json:"confidence" example:"0.85"`
	Source     string  `json:"source,omitempty" example:"pattern"`
}

// AnalyzeResponse is one annotated text
type AnalyzeResponse struct {
	Text           string   `json:"text"`
	Entities       []Entity `json:"entities"`
	TotalEntities  int      `json:"total_entities" example:"2"`
	ElapsedSeconds float64  `json:"processing_time" example:"0.004"`
	ModelVersion   string   `json:"model_version" example:"patterns+lexicon"`
	Timestamp      string   `json:"timestamp" example:"2026-08-30T13:05:00Z"`
}

// BatchResponse is the batch result in input order
type BatchResponse struct {
	Results        []AnalyzeResponse `json:"results"`
	TotalTexts     int               `json:"total_texts" example:"3"`
	ElapsedSeconds float64           `json:"processing_time" example:"0.012"`
}

// Example is one demo text callers can feed to analyze
type Example struct {
	Title string `json:"title" example:"Diabete"`
	Text  string `json:"text"`
}

// ExamplesResponse lists the demo texts
type ExamplesResponse struct {
	Examples []Example `json:"examples"`
}
