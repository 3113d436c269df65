package api

import (
	"net/http"

	"github.com/erazemk/katalog/internal/catalog"
)

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	Catalog *catalog.Service
}

// List handles GET /categories. With ?id= it returns that category only.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		category, err := h.Catalog.GetCategory(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, category)
		return
	}

	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Create handles POST /categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.AuthorizeAdmin(caller(r)); err != nil {
		writeError(w, r, err)
		return
	}

	var req catalog.CategoryInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Catalog.CreateCategory(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, category)
}

// Update handles PUT /categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.AuthorizeAdmin(caller(r)); err != nil {
		writeError(w, r, err)
		return
	}

	var req catalog.CategoryInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.Catalog.UpdateCategory(r.Context(), caller(r), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, category)
}

// Delete handles DELETE /categories/{id}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Catalog.DeleteCategory(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonDeleted(w, id)
}
