package middleware

import "github.com/fixline/homemart/internal/domain"

// RouteTable is the whole authorization policy in one place. Reads on the
// public catalog are not listed because they are not gated at all. An entry
// with no roles means any authenticated user.
func RouteTable() Table {
	anyUser := []string{}
	admin := []string{domain.RoleAdmin}
	customer := []string{domain.RoleCustomer}
	contractor := []string{domain.RoleContractor}
	distributorOrAdmin := []string{domain.RoleDistributor, domain.RoleAdmin}

	return Table{
		"POST /api/aichat/estimate": anyUser,

		"POST /api/brands":          distributorOrAdmin,
		"PUT /api/brands/{id}":      distributorOrAdmin,
		"DELETE /api/brands/{id}":   distributorOrAdmin,
		"POST /api/categories":      distributorOrAdmin,
		"PUT /api/categories/{id}":  distributorOrAdmin,
		"DELETE /api/categories/{id}": distributorOrAdmin,
		"POST /api/materials":       distributorOrAdmin,
		"PUT /api/materials/{id}":   distributorOrAdmin,
		"DELETE /api/materials/{id}": distributorOrAdmin,

		"GET /api/cart":               customer,
		"POST /api/cart/items":        customer,
		"PUT /api/cart/items/{id}":    customer,
		"DELETE /api/cart/items/{id}": customer,
		"DELETE /api/cart":            customer,

		"POST /api/requests":               customer,
		"GET /api/requests/open":           contractor,
		"GET /api/requests/mine":           anyUser,
		"GET /api/requests/{id}":           anyUser,
		"POST /api/requests/{id}/accept":   contractor,
		"POST /api/requests/{id}/complete": anyUser,
		"POST /api/requests/{id}/cancel":   customer,
		"GET /api/requests/{id}/chat":      anyUser,

		"POST /api/partners/apply":                      customer,
		"GET /api/partners/applications":                admin,
		"POST /api/partners/applications/{id}/approve":  admin,
		"POST /api/partners/applications/{id}/reject":   admin,
		"DELETE /api/partners/delete-partner/{id}":      admin,

		"POST /api/payments/checkout":    customer,
		"GET /api/payments/orders":       anyUser,
		"GET /api/payments/orders/{id}":  anyUser,

		"GET /api/notifications":            anyUser,
		"POST /api/notifications/{id}/read": anyUser,

		"GET /api/stats": admin,
	}
}
