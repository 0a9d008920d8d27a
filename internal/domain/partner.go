package domain

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// PartnerApplication is a customer asking to become a contractor or
// distributor. Approval flips the user's role.
type PartnerApplication struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	RequestedRole string            `json:"requested_role"`
	CompanyName   string            `json:"company_name"`
	DocumentsURL  string            `json:"documents_url,omitempty"`
	Status        ApplicationStatus `json:"status"`
	Note          string            `json:"note,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type PartnerApplyRequest struct {
	RequestedRole string `json:"requested_role"`
	CompanyName   string `json:"company_name"`
	DocumentsURL  string `json:"documents_url"`
}

func (r *PartnerApplyRequest) Validate() error {
	v := NewValidationError()
	if r.RequestedRole != RoleContractor && r.RequestedRole != RoleDistributor {
		v.Add("requested_role", "must be contractor or distributor")
	}
	if r.CompanyName == "" {
		v.Add("company_name", "is required")
	}
	if v.Empty() {
		return nil
	}
	return v
}
