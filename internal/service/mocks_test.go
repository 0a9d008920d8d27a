package service

import (
	"context"
	"sync"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/platform/ai"
	"github.com/fixline/homemart/internal/platform/payments"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/pkg/retry"
)

// ---------- Users ----------

type mockUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMockUsersRepo() *mockUsersRepo {
	return &mockUsersRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *mockUsersRepo) Create(_ context.Context, email, fullName, role string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{
		ID:        m.nextID,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.users[u.ID] = u
	m.nextID++
	return copyUser(u), nil
}

func (m *mockUsersRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *mockUsersRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (m *mockUsersRepo) MarkVerified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsVerified = true
	}
	return nil
}

func (m *mockUsersRepo) UpdateRole(_ context.Context, id int64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (m *mockUsersRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *mockUsersRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	return nil, nil
}

func (m *mockUsersRepo) CountByRole(_ context.Context, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	return &cp
}

// ---------- OTP challenges ----------

type mockOTPRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.OTPChallenge
}

func newMockOTPRepo() *mockOTPRepo {
	return &mockOTPRepo{nextID: 1, byID: make(map[int64]*domain.OTPChallenge)}
}

func (m *mockOTPRepo) CreateChallenge(_ context.Context, email string, purpose domain.OTPPurpose, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Supersede any prior unconsumed challenge for the pair.
	for id, ch := range m.byID {
		if ch.Email == email && ch.Purpose == purpose && ch.ConsumedAt == nil {
			delete(m.byID, id)
		}
	}
	ch := &domain.OTPChallenge{
		ID:        m.nextID,
		Email:     email,
		Purpose:   purpose,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	m.byID[ch.ID] = ch
	m.nextID++
	return nil
}

func (m *mockOTPRepo) Latest(_ context.Context, email string) (*domain.OTPChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.OTPChallenge
	for _, ch := range m.byID {
		if ch.Email != email {
			continue
		}
		if latest == nil || ch.ID > latest.ID {
			latest = ch
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *mockOTPRepo) Consume(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.byID[id]
	if !ok || ch.ConsumedAt != nil {
		return false, nil
	}
	now := time.Now()
	ch.ConsumedAt = &now
	return true, nil
}

func (m *mockOTPRepo) BumpAttempts(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.byID[id]; ok {
		ch.Attempts++
	}
	return nil
}

func (m *mockOTPRepo) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

// ---------- Refresh tokens ----------

type mockRefreshRepo struct {
	mu     sync.Mutex
	nextID int64
	byHash map[string]*domain.RefreshToken
}

func newMockRefreshRepo() *mockRefreshRepo {
	return &mockRefreshRepo{nextID: 1, byHash: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshRepo) Create(_ context.Context, userID int64, tokenHash, family string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byHash[tokenHash] = &domain.RefreshToken{
		ID:        m.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		Family:    family,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	m.nextID++
	return nil
}

func (m *mockRefreshRepo) FindByHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byHash[tokenHash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *mockRefreshRepo) Rotate(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byHash[tokenHash]
	if !ok || t.RotatedAt != nil || t.RevokedAt != nil || time.Now().After(t.ExpiresAt) {
		return nil, nil
	}
	now := time.Now()
	t.RotatedAt = &now
	cp := *t
	return &cp, nil
}

func (m *mockRefreshRepo) RevokeFamily(_ context.Context, family string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.byHash {
		if t.Family == family && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockRefreshRepo) liveCount(family string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, t := range m.byHash {
		if t.Family == family && t.RotatedAt == nil && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

// ---------- Mailer ----------

type mockMailer struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	sent     int
	sendErr  error
}

func (m *mockMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	return "mock-id", m.sendErr
}

func (m *mockMailer) SendOTP(email, code, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = email
	m.lastCode = code
	m.sent++
	return m.sendErr
}

func (m *mockMailer) SendNotification(email, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = email
	m.sent++
	return m.sendErr
}

// ---------- Cache ----------

type mockCache struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{keys: make(map[string]string)}
}

func (m *mockCache) Cooldown(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return true, nil
	}
	m.keys[key] = "1"
	return false, nil
}

func (m *mockCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key], nil
}

func (m *mockCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = value
	return nil
}

// ---------- Event bus ----------

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, s := range m.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

// ---------- AI completer ----------

// scriptedCompleter replays a fixed sequence of results and then repeats the
// last one.
type scriptedCompleter struct {
	mu      sync.Mutex
	calls   int
	results []retry.Result[ai.Completion]
}

func (c *scriptedCompleter) Complete(_ context.Context, _ string) retry.Result[ai.Completion] {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	if i >= len(c.results) {
		i = len(c.results) - 1
	}
	c.calls++
	return c.results[i]
}

// ---------- Payment intents ----------

type mockIntents struct {
	mu      sync.Mutex
	created int
	fail    error
}

func (m *mockIntents) CreateIntent(_ context.Context, amountCents int64, currency string, orderID int64) (*payments.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	m.created++
	return &payments.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

// ---------- Catalog ----------

// mockCatalogRepo embeds the interface so only the methods a test exercises
// need real behavior.
type mockCatalogRepo struct {
	postgres.CatalogRepo
	mu        sync.Mutex
	materials map[int64]*domain.Material
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{materials: make(map[int64]*domain.Material)}
}

func (m *mockCatalogRepo) put(mat *domain.Material) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials[mat.ID] = mat
}

func (m *mockCatalogRepo) GetMaterial(_ context.Context, id int64) (*domain.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mat, ok := m.materials[id]; ok {
		cp := *mat
		return &cp, nil
	}
	return nil, nil
}

func (m *mockCatalogRepo) DecrementStock(_ context.Context, id int64, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat, ok := m.materials[id]
	if !ok || mat.Stock < qty {
		return false, nil
	}
	mat.Stock -= qty
	return true, nil
}

func (m *mockCatalogRepo) IncrementStock(_ context.Context, id int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mat, ok := m.materials[id]; ok {
		mat.Stock += qty
	}
	return nil
}

// ---------- Cart ----------

type mockCartRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*domain.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{nextID: 1, items: make(map[int64]*domain.CartItem)}
}

func (m *mockCartRepo) Upsert(_ context.Context, userID, materialID int64, qty int, unitPriceCents int64) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.UserID == userID && it.MaterialID == materialID {
			it.Quantity = qty
			it.UnitPriceCents = unitPriceCents
			cp := *it
			return &cp, nil
		}
	}
	it := &domain.CartItem{
		ID:             m.nextID,
		UserID:         userID,
		MaterialID:     materialID,
		Quantity:       qty,
		UnitPriceCents: unitPriceCents,
	}
	m.items[it.ID] = it
	m.nextID++
	cp := *it
	return &cp, nil
}

func (m *mockCartRepo) UpdateQuantity(_ context.Context, userID, itemID int64, qty int) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok || it.UserID != userID {
		return nil, nil
	}
	it.Quantity = qty
	cp := *it
	return &cp, nil
}

func (m *mockCartRepo) Remove(_ context.Context, userID, itemID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok || it.UserID != userID {
		return false, nil
	}
	delete(m.items, itemID)
	return true, nil
}

func (m *mockCartRepo) ListByUser(_ context.Context, userID int64) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CartItem
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *mockCartRepo) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.items {
		if it.UserID == userID {
			delete(m.items, id)
		}
	}
	return nil
}

// ---------- Orders ----------

type mockOrdersRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
}

func newMockOrdersRepo() *mockOrdersRepo {
	return &mockOrdersRepo{nextID: 1, orders: make(map[int64]*domain.Order)}
}

func (m *mockOrdersRepo) CreateWithItems(_ context.Context, userID int64, totalCents int64, currency string, items []domain.OrderItem) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := &domain.Order{
		ID:         m.nextID,
		UserID:     userID,
		Status:     domain.OrderPendingPayment,
		TotalCents: totalCents,
		Currency:   currency,
	}
	m.orders[o.ID] = o
	m.nextID++
	cp := *o
	return &cp, nil
}

func (m *mockOrdersRepo) SetIntent(_ context.Context, orderID int64, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.IntentID = intentID
	}
	return nil
}

func (m *mockOrdersRepo) MarkPaidByIntent(_ context.Context, intentID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.IntentID == intentID && o.Status == domain.OrderPendingPayment {
			o.Status = domain.OrderPaid
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockOrdersRepo) MarkFailedByIntent(_ context.Context, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.IntentID == intentID && o.Status == domain.OrderPendingPayment {
			o.Status = domain.OrderFailed
		}
	}
	return nil
}

func (m *mockOrdersRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (m *mockOrdersRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrdersRepo) SumPaidCents(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, o := range m.orders {
		if o.Status == domain.OrderPaid {
			sum += o.TotalCents
		}
	}
	return sum, nil
}

// ---------- Partner applications ----------

type mockPartnerRepo struct {
	mu     sync.Mutex
	nextID int64
	apps   map[int64]*domain.PartnerApplication
}

func newMockPartnerRepo() *mockPartnerRepo {
	return &mockPartnerRepo{nextID: 1, apps: make(map[int64]*domain.PartnerApplication)}
}

func (m *mockPartnerRepo) CreateApplication(_ context.Context, userID int64, in *domain.PartnerApplyRequest) (*domain.PartnerApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &domain.PartnerApplication{
		ID:            m.nextID,
		UserID:        userID,
		RequestedRole: in.RequestedRole,
		CompanyName:   in.CompanyName,
		DocumentsURL:  in.DocumentsURL,
		Status:        domain.ApplicationPending,
	}
	m.apps[a.ID] = a
	m.nextID++
	cp := *a
	return &cp, nil
}

func (m *mockPartnerRepo) GetApplication(_ context.Context, id int64) (*domain.PartnerApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.apps[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *mockPartnerRepo) ListApplications(_ context.Context, status domain.ApplicationStatus, limit, offset int) ([]domain.PartnerApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PartnerApplication
	for _, a := range m.apps {
		if a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockPartnerRepo) SetStatus(_ context.Context, id int64, status domain.ApplicationStatus, note string) (*domain.PartnerApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok || a.Status != domain.ApplicationPending {
		return nil, nil
	}
	a.Status = status
	a.Note = note
	cp := *a
	return &cp, nil
}

func (m *mockPartnerRepo) HasPending(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.UserID == userID && a.Status == domain.ApplicationPending {
			return true, nil
		}
	}
	return false, nil
}

// ---------- Service requests ----------

type mockRequestRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]*domain.ServiceRequest
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{nextID: 1, requests: make(map[int64]*domain.ServiceRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, customerID int64, in *domain.ServiceRequestCreate, estimateDesc string, estimateCents int64) (*domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr := &domain.ServiceRequest{
		ID:                  m.nextID,
		CustomerID:          customerID,
		Status:              domain.RequestOpen,
		Title:               in.Title,
		Description:         in.Description,
		Address:             in.Address,
		BudgetCents:         in.BudgetCents,
		EstimateDescription: estimateDesc,
		EstimateCents:       estimateCents,
		CreatedAt:           time.Now(),
	}
	m.requests[sr.ID] = sr
	m.nextID++
	cp := *sr
	return &cp, nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id int64) (*domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sr, ok := m.requests[id]; ok {
		cp := *sr
		return &cp, nil
	}
	return nil, nil
}

func (m *mockRequestRepo) ListOpen(_ context.Context, limit, offset int) ([]domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ServiceRequest
	for _, sr := range m.requests {
		if sr.Status == domain.RequestOpen {
			out = append(out, *sr)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) ListByCustomer(_ context.Context, customerID int64, limit, offset int) ([]domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ServiceRequest
	for _, sr := range m.requests {
		if sr.CustomerID == customerID {
			out = append(out, *sr)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) ListByContractor(_ context.Context, contractorID int64, limit, offset int) ([]domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ServiceRequest
	for _, sr := range m.requests {
		if sr.ContractorID != nil && *sr.ContractorID == contractorID {
			out = append(out, *sr)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) Accept(_ context.Context, id, contractorID int64) (*domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.requests[id]
	if !ok || sr.Status != domain.RequestOpen {
		return nil, nil
	}
	sr.Status = domain.RequestAccepted
	sr.ContractorID = &contractorID
	cp := *sr
	return &cp, nil
}

func (m *mockRequestRepo) SetStatus(_ context.Context, id int64, status domain.RequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.requests[id]
	if !ok {
		return false, nil
	}
	sr.Status = status
	return true, nil
}

func (m *mockRequestRepo) CountByStatus(_ context.Context, status domain.RequestStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, sr := range m.requests {
		if sr.Status == status {
			n++
		}
	}
	return n, nil
}
