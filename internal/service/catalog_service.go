package service

import (
	"context"
	"fmt"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/repo/postgres"
)

// MaterialFilter narrows a materials listing. Zero values mean "no filter".
type MaterialFilter struct {
	CategoryID int64
	BrandID    int64
	Limit      int
	Offset     int
}

type CatalogService interface {
	CreateBrand(ctx context.Context, in *domain.BrandUpsert) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, id int64, in *domain.BrandUpsert) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
	ListBrands(ctx context.Context) ([]domain.Brand, error)

	CreateCategory(ctx context.Context, in *domain.CategoryUpsert) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, in *domain.CategoryUpsert) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)

	CreateMaterial(ctx context.Context, in *domain.MaterialUpsert) (*domain.Material, error)
	UpdateMaterial(ctx context.Context, id int64, in *domain.MaterialUpsert) (*domain.Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
	GetMaterial(ctx context.Context, id int64) (*domain.Material, error)
	ListMaterials(ctx context.Context, filter MaterialFilter) ([]domain.Material, error)
}

type catalogService struct {
	catalog postgres.CatalogRepo
}

func NewCatalogService(catalog postgres.CatalogRepo) CatalogService {
	return &catalogService{catalog: catalog}
}

func (s *catalogService) CreateBrand(ctx context.Context, in *domain.BrandUpsert) (*domain.Brand, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.catalog.CreateBrand(ctx, in)
}

func (s *catalogService) UpdateBrand(ctx context.Context, id int64, in *domain.BrandUpsert) (*domain.Brand, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	b, err := s.catalog.UpdateBrand(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (s *catalogService) DeleteBrand(ctx context.Context, id int64) error {
	ok, err := s.catalog.DeleteBrand(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *catalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.catalog.ListBrands(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, in *domain.CategoryUpsert) (*domain.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.catalog.CreateCategory(ctx, in)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, in *domain.CategoryUpsert) (*domain.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.catalog.UpdateCategory(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	ok, err := s.catalog.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.catalog.ListCategories(ctx)
}

func (s *catalogService) CreateMaterial(ctx context.Context, in *domain.MaterialUpsert) (*domain.Material, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.catalog.CreateMaterial(ctx, in)
}

func (s *catalogService) UpdateMaterial(ctx context.Context, id int64, in *domain.MaterialUpsert) (*domain.Material, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := s.catalog.UpdateMaterial(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (s *catalogService) DeleteMaterial(ctx context.Context, id int64) error {
	ok, err := s.catalog.DeleteMaterial(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *catalogService) GetMaterial(ctx context.Context, id int64) (*domain.Material, error) {
	m, err := s.catalog.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (s *catalogService) ListMaterials(ctx context.Context, filter MaterialFilter) ([]domain.Material, error) {
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	return s.catalog.ListMaterials(ctx, filter.CategoryID, filter.BrandID, limit, offset)
}
