// internal/types/api_models.go
package types

// --------------------------------------------
// Request for the single-string clean endpoint
// --------------------------------------------
type CleanRequest struct {
	Text      string `json:"text"`
	MinLength *int   `json:"min_length,omitempty"`
	MaxLength *int   `json:"max_length,omitempty"`
}

// --------------------------------------------
// Successful clean result
// --------------------------------------------
type CleanResponse struct {
	Original   string `json:"original"`
	Text       string `json:"text"`
	Length     int    `json:"length"`
	Bounds     Bounds `json:"bounds"`
	DurationMs int64  `json:"duration_ms"`
}

// --------------------------------------------
// Error body; length fields set for bounds violations
// --------------------------------------------
type ErrorResponse struct {
	Error  string  `json:"error"`
	Code   string  `json:"code"`
	Length *int    `json:"length,omitempty"`
	Bounds *Bounds `json:"bounds,omitempty"`
}
