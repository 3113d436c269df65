package api

import (
	"net/http"

	"github.com/erazemk/katalog/internal/catalog"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Catalog *catalog.Service
}

// List handles GET /items. The query string selects the listing strategy;
// ?item= returns a single item instead of an array.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for key := range query {
		params[key] = query.Get(key)
	}

	listing, err := h.Catalog.ListItems(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if listing.Item != nil {
		jsonResponse(w, http.StatusOK, listing.Item)
		return
	}
	jsonResponse(w, http.StatusOK, listing.Items)
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalog.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Catalog.CreateItem(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Catalog.AuthorizeItemUpdate(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	var req catalog.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Catalog.UpdateItem(r.Context(), caller(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Catalog.DeleteItem(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonDeleted(w, id)
}
