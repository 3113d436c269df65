package api

import (
	"net/http"

	"github.com/erazemk/katalog/internal/catalog"
)

// TagsHandler handles tag endpoints.
type TagsHandler struct {
	Catalog *catalog.Service
}

// List handles GET /tags. With ?id= it returns that tag only.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		tag, err := h.Catalog.GetTag(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, tag)
		return
	}

	tags, err := h.Catalog.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, tags)
}

// Create handles POST /tags.
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.AuthorizeAdmin(caller(r)); err != nil {
		writeError(w, r, err)
		return
	}

	var req catalog.TagInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.Catalog.CreateTag(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, tag)
}

// Update handles PUT /tags/{id}.
func (h *TagsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.AuthorizeAdmin(caller(r)); err != nil {
		writeError(w, r, err)
		return
	}

	var req catalog.TagInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.Catalog.UpdateTag(r.Context(), caller(r), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, tag)
}

// Delete handles DELETE /tags/{id}.
func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Catalog.DeleteTag(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonDeleted(w, id)
}
