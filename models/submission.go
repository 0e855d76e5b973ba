package models

// SubmissionPatch is what a submission attempt writes back onto a cargo
// order or manifest. Nil fields are left untouched.
type SubmissionPatch struct {
	Status       string
	LastXML      *string
	LastResponse *string
	Message      *string
	IngresoID    *string
	SecurityCode *string

	LoadedQuantity *int
}

// SubmissionResult is the per-record outcome returned to callers.
type SubmissionResult struct {
	Success     bool   `json:"success"`
	Consecutive string `json:"consecutivo,omitempty"`
	IngresoID   string `json:"ingreso_id,omitempty"`
	Message     string `json:"message"`
	RawResponse string `json:"raw_response,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
}

// BatchResult aggregates a sequential batch run.
type BatchResult struct {
	BatchID   string             `json:"batch_id"`
	Total     int                `json:"total"`
	Successes int                `json:"exitosos"`
	Failures  int                `json:"errores"`
	Results   []SubmissionResult `json:"results"`
}

// Add appends a record outcome and updates the counters.
func (b *BatchResult) Add(r SubmissionResult) {
	b.Results = append(b.Results, r)
	b.Total++
	if r.Success {
		b.Successes++
	} else {
		b.Failures++
	}
}
