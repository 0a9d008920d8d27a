package domain

// EstimateRequest carries free-form project parameters the AI turns into a
// description plus a price suggestion.
type EstimateRequest struct {
	ProjectType string `json:"project_type"`
	Area        string `json:"area"`
	Materials   string `json:"materials"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

func (r *EstimateRequest) Validate() error {
	if r.ProjectType == "" {
		return FieldError("project_type", "is required")
	}
	return nil
}

// EstimateResponse may carry a sentinel failure description even on a 200
// response; callers must check Description against the known sentinels.
type EstimateResponse struct {
	Description    string `json:"description"`
	EstimatedCents int64  `json:"estimated_cents"`
	Attempts       int    `json:"attempts"`
}
