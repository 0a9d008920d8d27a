package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fixline/homemart/internal/domain"
	"github.com/fixline/homemart/internal/http/response"
	"github.com/fixline/homemart/internal/service"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves brands, categories and materials. Reads are public;
// writes are gated to distributors and admins by the route table.
type CatalogHandler struct {
	Catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

func (h *CatalogHandler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Catalog.ListBrands(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, brands)
}

func (h *CatalogHandler) createBrand(w http.ResponseWriter, r *http.Request) {
	var in domain.BrandUpsert
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	brand, err := h.Catalog.CreateBrand(r.Context(), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, brand)
}

func (h *CatalogHandler) updateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	var in domain.BrandUpsert
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	brand, err := h.Catalog.UpdateBrand(r.Context(), id, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, brand)
}

func (h *CatalogHandler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Catalog.DeleteBrand(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryUpsert
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	category, err := h.Catalog.CreateCategory(r.Context(), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, category)
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	var in domain.CategoryUpsert
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	category, err := h.Catalog.UpdateCategory(r.Context(), id, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Catalog.DeleteCategory(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.Catalog.ListMaterials(r.Context(), service.MaterialFilter{
		CategoryID: queryInt64(r, "category_id"),
		BrandID:    queryInt64(r, "brand_id"),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, materials)
}

func (h *CatalogHandler) getMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	material, err := h.Catalog.GetMaterial(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, material)
}

func (h *CatalogHandler) createMaterial(w http.ResponseWriter, r *http.Request) {
	var in domain.MaterialUpsert
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	material, err := h.Catalog.CreateMaterial(r.Context(), &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, material)
}

func (h *CatalogHandler) updateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	var in domain.MaterialUpsert
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	material, err := h.Catalog.UpdateMaterial(r.Context(), id, &in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, material)
}

func (h *CatalogHandler) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Catalog.DeleteMaterial(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Mount attaches the catalog routes onto the given router. The protect
// callback wraps each write route with the authorization gate for its key.
func (h *CatalogHandler) Mount(r chi.Router, protect func(routeKey string) func(http.Handler) http.Handler) {
	r.Get("/api/brands", h.listBrands)
	r.With(protect("POST /api/brands")).Post("/api/brands", h.createBrand)
	r.With(protect("PUT /api/brands/{id}")).Put("/api/brands/{id}", h.updateBrand)
	r.With(protect("DELETE /api/brands/{id}")).Delete("/api/brands/{id}", h.deleteBrand)

	r.Get("/api/categories", h.listCategories)
	r.With(protect("POST /api/categories")).Post("/api/categories", h.createCategory)
	r.With(protect("PUT /api/categories/{id}")).Put("/api/categories/{id}", h.updateCategory)
	r.With(protect("DELETE /api/categories/{id}")).Delete("/api/categories/{id}", h.deleteCategory)

	r.Get("/api/materials", h.listMaterials)
	r.Get("/api/materials/{id}", h.getMaterial)
	r.With(protect("POST /api/materials")).Post("/api/materials", h.createMaterial)
	r.With(protect("PUT /api/materials/{id}")).Put("/api/materials/{id}", h.updateMaterial)
	r.With(protect("DELETE /api/materials/{id}")).Delete("/api/materials/{id}", h.deleteMaterial)
}
