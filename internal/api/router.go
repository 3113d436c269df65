package api

import (
	"net/http"

	"github.com/erazemk/katalog/internal/catalog"
)

// NewRouter creates the API router with all endpoints registered. images
// serves stored objects under /images/ and may be nil when another host
// serves them.
func NewRouter(svc *catalog.Service, jwtSecret string, images http.Handler) http.Handler {
	mux := http.NewServeMux()

	tagsHandler := &TagsHandler{Catalog: svc}
	categoriesHandler := &CategoriesHandler{Catalog: svc}
	itemsHandler := &ItemsHandler{Catalog: svc}

	authMW := AuthMiddleware(jwtSecret)

	mux.HandleFunc("GET /healthz", Health(svc))

	// Tags: read (public), write (admin, checked by the catalog).
	mux.HandleFunc("GET /tags", tagsHandler.List)
	mux.Handle("POST /tags", authMW(http.HandlerFunc(tagsHandler.Create)))
	mux.Handle("PUT /tags/{id}", authMW(http.HandlerFunc(tagsHandler.Update)))
	mux.Handle("DELETE /tags/{id}", authMW(http.HandlerFunc(tagsHandler.Delete)))

	// Categories: read (public), write (admin).
	mux.HandleFunc("GET /categories", categoriesHandler.List)
	mux.Handle("POST /categories", authMW(http.HandlerFunc(categoriesHandler.Create)))
	mux.Handle("PUT /categories/{id}", authMW(http.HandlerFunc(categoriesHandler.Update)))
	mux.Handle("DELETE /categories/{id}", authMW(http.HandlerFunc(categoriesHandler.Delete)))

	// Items: read (public), create (any caller), update (admin or owner),
	// delete (admin).
	mux.HandleFunc("GET /items", itemsHandler.List)
	mux.Handle("POST /items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	if images != nil {
		mux.Handle("GET /images/", http.StripPrefix("/images/", images))
	}

	return CORSMiddleware(mux)
}
