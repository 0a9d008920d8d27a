package domain

import "time"

type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestAccepted  RequestStatus = "accepted"
	RequestCompleted RequestStatus = "completed"
	RequestCanceled  RequestStatus = "canceled"
)

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case RequestOpen, RequestAccepted, RequestCompleted, RequestCanceled:
		return RequestStatus(s), true
	default:
		return "", false
	}
}

// ServiceRequest is a customer's ask for home work (renovation, repair,
// installation). Contractors browse open requests and accept them.
type ServiceRequest struct {
	ID           int64         `json:"id"`
	CustomerID   int64         `json:"customer_id"`
	ContractorID *int64        `json:"contractor_id,omitempty"`
	Status       RequestStatus `json:"status"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	BudgetCents int64  `json:"budget_cents"`

	// AI estimate attached at creation time, if the customer asked for one.
	EstimateDescription string `json:"estimate_description,omitempty"`
	EstimateCents       int64  `json:"estimate_cents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ServiceRequestCreate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	BudgetCents int64  `json:"budget_cents"`
	WantsAIEstimate bool `json:"wants_ai_estimate"`
}

func (r *ServiceRequestCreate) Validate() error {
	v := NewValidationError()
	if r.Title == "" {
		v.Add("title", "is required")
	}
	if r.Description == "" {
		v.Add("description", "is required")
	}
	if r.Address == "" {
		v.Add("address", "is required")
	}
	if r.BudgetCents < 0 {
		v.Add("budget_cents", "must not be negative")
	}
	if v.Empty() {
		return nil
	}
	return v
}
