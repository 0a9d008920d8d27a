package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fixline/homemart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepo interface {
	CreateBrand(ctx context.Context, in *domain.BrandUpsert) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, id int64, in *domain.BrandUpsert) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id int64) (bool, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)

	CreateCategory(ctx context.Context, in *domain.CategoryUpsert) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, in *domain.CategoryUpsert) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	CreateMaterial(ctx context.Context, in *domain.MaterialUpsert) (*domain.Material, error)
	UpdateMaterial(ctx context.Context, id int64, in *domain.MaterialUpsert) (*domain.Material, error)
	DeleteMaterial(ctx context.Context, id int64) (bool, error)
	GetMaterial(ctx context.Context, id int64) (*domain.Material, error)
	ListMaterials(ctx context.Context, categoryID, brandID int64, limit, offset int) ([]domain.Material, error)
	// DecrementStock fails (false) when remaining stock is insufficient.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
	// IncrementStock returns a reservation taken by DecrementStock.
	IncrementStock(ctx context.Context, id int64, qty int) error
	CountMaterials(ctx context.Context) (int64, error)
}

type CatalogRepoImpl struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepoImpl { return &CatalogRepoImpl{pool: pool} }

const materialCols = `id, name, description, brand_id, category_id, price_cents, stock, unit, image_url, created_at, updated_at`

func scanMaterial(row pgx.Row) (*domain.Material, error) {
	var m domain.Material
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.BrandID, &m.CategoryID,
		&m.PriceCents, &m.Stock, &m.Unit, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *CatalogRepoImpl) CreateBrand(ctx context.Context, in *domain.BrandUpsert) (*domain.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Brand
	err := r.pool.QueryRow(ctx, `
INSERT INTO brands (name, country)
VALUES ($1, $2)
RETURNING id, name, country, created_at, updated_at`,
		in.Name, in.Country).Scan(&b.ID, &b.Name, &b.Country, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *CatalogRepoImpl) UpdateBrand(ctx context.Context, id int64, in *domain.BrandUpsert) (*domain.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Brand
	err := r.pool.QueryRow(ctx, `
UPDATE brands SET name = $2, country = $3, updated_at = now()
WHERE id = $1
RETURNING id, name, country, created_at, updated_at`,
		id, in.Name, in.Country).Scan(&b.ID, &b.Name, &b.Country, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *CatalogRepoImpl) DeleteBrand(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CatalogRepoImpl) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, country, created_at, updated_at FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []domain.Brand
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Country, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *CatalogRepoImpl) CreateCategory(ctx context.Context, in *domain.CategoryUpsert) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Category
	err := r.pool.QueryRow(ctx, `
INSERT INTO categories (name, parent_id)
VALUES ($1, $2)
RETURNING id, name, parent_id, created_at, updated_at`,
		in.Name, in.ParentID).Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepoImpl) UpdateCategory(ctx context.Context, id int64, in *domain.CategoryUpsert) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Category
	err := r.pool.QueryRow(ctx, `
UPDATE categories SET name = $2, parent_id = $3, updated_at = now()
WHERE id = $1
RETURNING id, name, parent_id, created_at, updated_at`,
		id, in.Name, in.ParentID).Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepoImpl) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CatalogRepoImpl) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, parent_id, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *CatalogRepoImpl) CreateMaterial(ctx context.Context, in *domain.MaterialUpsert) (*domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanMaterial(r.pool.QueryRow(ctx, `
INSERT INTO materials (name, description, brand_id, category_id, price_cents, stock, unit, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+materialCols,
		in.Name, in.Description, in.BrandID, in.CategoryID, in.PriceCents, in.Stock, in.Unit, in.ImageURL))
}

func (r *CatalogRepoImpl) UpdateMaterial(ctx context.Context, id int64, in *domain.MaterialUpsert) (*domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanMaterial(r.pool.QueryRow(ctx, `
UPDATE materials
SET name = $2, description = $3, brand_id = $4, category_id = $5,
    price_cents = $6, stock = $7, unit = $8, image_url = $9, updated_at = now()
WHERE id = $1
RETURNING `+materialCols,
		id, in.Name, in.Description, in.BrandID, in.CategoryID, in.PriceCents, in.Stock, in.Unit, in.ImageURL))
}

func (r *CatalogRepoImpl) DeleteMaterial(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CatalogRepoImpl) GetMaterial(ctx context.Context, id int64) (*domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanMaterial(r.pool.QueryRow(ctx,
		`SELECT `+materialCols+` FROM materials WHERE id = $1`, id))
}

func (r *CatalogRepoImpl) ListMaterials(ctx context.Context, categoryID, brandID int64, limit, offset int) ([]domain.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT `+materialCols+`
FROM materials
WHERE ($1 = 0 OR category_id = $1)
  AND ($2 = 0 OR brand_id = $2)
ORDER BY id
LIMIT $3 OFFSET $4`, categoryID, brandID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mats []domain.Material
	for rows.Next() {
		var m domain.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.BrandID, &m.CategoryID,
			&m.PriceCents, &m.Stock, &m.Unit, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		mats = append(mats, m)
	}
	return mats, rows.Err()
}

func (r *CatalogRepoImpl) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
UPDATE materials
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CatalogRepoImpl) IncrementStock(ctx context.Context, id int64, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
UPDATE materials
SET stock = stock + $2, updated_at = now()
WHERE id = $1`, id, qty)
	return err
}

func (r *CatalogRepoImpl) CountMaterials(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM materials`).Scan(&n)
	return n, err
}
