package service

// Facade bundles every domain service behind one value so the wiring layer
// hands handlers a single dependency instead of nine.
type Facade struct {
	Auth          AuthService
	Estimate      EstimateService
	Catalog       CatalogService
	Cart          CartService
	Requests      RequestService
	Partners      PartnerService
	Payments      PaymentService
	Notifications NotificationService
	Stats         StatsService
}
