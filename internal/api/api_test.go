package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/events"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/objectstore"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server *httptest.Server
	images *objectstore.Disk
	bus    *events.LocalBus
	admin  string
	ana    string
	bob    string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)

	images, err := objectstore.NewDisk(t.TempDir(), "/images")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	cleaner := &events.Cleaner{Objects: images}
	bus := events.NewLocalBus(cleaner.Handle, 8)
	t.Cleanup(bus.Close)

	svc := catalog.New(database, images, bus, auth.DefaultAdminGroup)
	server := httptest.NewServer(NewRouter(svc, testJWTSecret, images.Handler()))
	t.Cleanup(server.Close)

	return &testEnv{
		server: server,
		images: images,
		bus:    bus,
		admin:  issueToken(t, "admin@example.com", auth.DefaultAdminGroup),
		ana:    issueToken(t, "ana@example.com"),
		bob:    issueToken(t, "bob@example.com"),
	}
}

func issueToken(t *testing.T, email string, groups ...string) string {
	t.Helper()
	token, err := auth.IssueToken(testJWTSecret, email, groups, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends a request and decodes the JSON response into out, if non-nil.
func do(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/tags"},
		{"PUT", "/tags/1"},
		{"DELETE", "/tags/1"},
		{"POST", "/categories"},
		{"PUT", "/categories/1"},
		{"DELETE", "/categories/1"},
		{"POST", "/items"},
		{"PUT", "/items/1"},
		{"DELETE", "/items/1"},
	}

	for _, ep := range endpoints {
		req, _ := authRequest(ep.method, env.server.URL+ep.path, "", map[string]string{"name": "x"})
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", ep.method, ep.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", ep.method, ep.path, resp.StatusCode)
		}
	}

	var errBody map[string]string
	if status := do(t, "POST", env.server.URL+"/tags", "not-a-token", map[string]string{"name": "x"}, &errBody); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", status)
	}
	if errBody["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestPublicReads(t *testing.T) {
	env := setupTestServer(t)

	for _, path := range []string{"/tags", "/categories", "/items", "/healthz"} {
		if status := do(t, "GET", env.server.URL+path, "", nil, nil); status != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, status)
		}
	}
}

func TestCORS(t *testing.T) {
	env := setupTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, env.server.URL+"/items", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", resp.StatusCode)
	}

	resp, err = http.Get(env.server.URL + "/tags")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Allow-Origin *, got %q", got)
	}
}

func TestTagsAPIFlow(t *testing.T) {
	env := setupTestServer(t)
	url := env.server.URL

	var tag model.Tag
	if status := do(t, "POST", url+"/tags", env.admin, map[string]string{"name": "sale"}, &tag); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if tag.ID == "" || tag.Type != model.TypeTag {
		t.Errorf("unexpected tag %+v", tag)
	}

	var errBody map[string]string
	if status := do(t, "POST", url+"/tags", env.admin, map[string]string{"name": "sale"}, &errBody); status != http.StatusForbidden {
		t.Errorf("duplicate tag: expected 403, got %d", status)
	}
	if errBody["error"] != "Tag with such name already exists" {
		t.Errorf("unexpected error %q", errBody["error"])
	}

	if status := do(t, "POST", url+"/tags", env.ana, map[string]string{"name": "new"}, nil); status != http.StatusForbidden {
		t.Errorf("non-admin create: expected 403, got %d", status)
	}

	var got model.Tag
	if status := do(t, "GET", url+"/tags?id="+tag.ID, "", nil, &got); status != http.StatusOK || got.Name != "sale" {
		t.Errorf("get by id: status %d, tag %+v", status, got)
	}
	if status := do(t, "GET", url+"/tags?id=missing", "", nil, nil); status != http.StatusNotFound {
		t.Errorf("get missing: expected 404, got %d", status)
	}

	var renamed model.Tag
	if status := do(t, "PUT", url+"/tags/"+tag.ID, env.admin, map[string]string{"name": "promo"}, &renamed); status != http.StatusOK {
		t.Errorf("rename: expected 200, got %d", status)
	}
	if renamed.Name != "promo" {
		t.Errorf("expected promo, got %q", renamed.Name)
	}

	var deleted map[string]string
	if status := do(t, "DELETE", url+"/tags/"+tag.ID, env.admin, nil, &deleted); status != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", status)
	}
	if deleted["message"] != "Deleted" || deleted["id"] != tag.ID {
		t.Errorf("unexpected delete body %v", deleted)
	}
	if status := do(t, "DELETE", url+"/tags/"+tag.ID, env.admin, nil, nil); status != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", status)
	}
}

func TestMalformedBody(t *testing.T) {
	env := setupTestServer(t)

	req, _ := http.NewRequest("POST", env.server.URL+"/tags", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+env.admin)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestItemsAPIFlow(t *testing.T) {
	env := setupTestServer(t)
	url := env.server.URL

	var item model.Item
	status := do(t, "POST", url+"/items", env.admin, map[string]any{
		"name": "Hammer", "category": "tools", "tags": []string{"sale"},
	}, &item)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if item.NameSearch != "hammer" {
		t.Errorf("expected namesearch hammer, got %q", item.NameSearch)
	}

	var items []model.Item
	if status := do(t, "GET", url+"/items?tag=sale", "", nil, &items); status != http.StatusOK {
		t.Fatalf("list by tag: expected 200, got %d", status)
	}
	if len(items) != 1 || items[0].Name != "Hammer" {
		t.Errorf("expected [Hammer], got %+v", items)
	}

	var single model.Item
	if status := do(t, "GET", url+"/items?item="+item.ID, "", nil, &single); status != http.StatusOK || single.ID != item.ID {
		t.Errorf("get by id: status %d, item %+v", status, single)
	}
	if status := do(t, "GET", url+"/items?item=missing", "", nil, nil); status != http.StatusNotFound {
		t.Errorf("get missing: expected 404, got %d", status)
	}
	if status := do(t, "GET", url+"/items?category=tools&page=2", "", nil, nil); status != http.StatusBadRequest {
		t.Errorf("unroutable query: expected 400, got %d", status)
	}

	// Any authenticated caller may create; only the owner or an admin may update.
	var anaItem model.Item
	if status := do(t, "POST", url+"/items", env.ana, map[string]any{"name": "Saw"}, &anaItem); status != http.StatusCreated {
		t.Fatalf("user create: expected 201, got %d", status)
	}
	if anaItem.CreatedBy != "ana@example.com" {
		t.Errorf("expected createdBy ana, got %q", anaItem.CreatedBy)
	}
	if status := do(t, "PUT", url+"/items/"+anaItem.ID, env.bob, map[string]any{"description": "mine now"}, nil); status != http.StatusForbidden {
		t.Errorf("non-owner update: expected 403, got %d", status)
	}
	if status := do(t, "PUT", url+"/items/"+anaItem.ID, env.ana, map[string]any{"description": "sharp"}, nil); status != http.StatusOK {
		t.Errorf("owner update: expected 200, got %d", status)
	}
	if status := do(t, "DELETE", url+"/items/"+anaItem.ID, env.ana, nil, nil); status != http.StatusForbidden {
		t.Errorf("non-admin delete: expected 403, got %d", status)
	}
	if status := do(t, "POST", url+"/items", env.bob, map[string]any{"name": "Saw"}, nil); status != http.StatusForbidden {
		t.Errorf("duplicate item: expected 403, got %d", status)
	}
}

func putImage(t *testing.T, env *testEnv, key string) string {
	t.Helper()
	ref, err := env.images.Put(context.Background(), key, "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Put(%s): %v", key, err)
	}
	return ref
}

func imageExists(env *testEnv, key string) bool {
	_, err := os.Stat(filepath.Join(env.images.Root, key))
	return err == nil
}

func TestItemImageCleanup(t *testing.T) {
	env := setupTestServer(t)
	url := env.server.URL

	a := putImage(t, env, "a.png")
	b := putImage(t, env, "b.png")

	var item model.Item
	if status := do(t, "POST", url+"/items", env.admin, map[string]any{"name": "Hammer", "images": []string{a, b}}, &item); status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", status)
	}

	// Stored images are publicly readable.
	if status := do(t, "GET", url+a, "", nil, nil); status != http.StatusOK {
		t.Errorf("GET %s: expected 200, got %d", a, status)
	}

	if status := do(t, "PUT", url+"/items/"+item.ID, env.admin, map[string]any{"images": []string{b}}, nil); status != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", status)
	}
	if status := do(t, "DELETE", url+"/items/"+item.ID, env.admin, nil, nil); status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}

	// Closing the bus waits for pending cleanup.
	env.bus.Close()
	if imageExists(env, "a.png") || imageExists(env, "b.png") {
		t.Error("expected both images to be cleaned up")
	}
}

func TestCategoryAPIFlow(t *testing.T) {
	env := setupTestServer(t)
	url := env.server.URL

	img := putImage(t, env, "tools.png")

	var category model.Category
	if status := do(t, "POST", url+"/categories", env.admin, map[string]any{"name": "tools", "image": img}, &category); status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", status)
	}
	if status := do(t, "POST", url+"/categories", env.admin, map[string]any{"name": "tools"}, nil); status != http.StatusForbidden {
		t.Errorf("duplicate: expected 403, got %d", status)
	}

	var categories []model.Category
	do(t, "GET", url+"/categories", "", nil, &categories)
	if len(categories) != 1 {
		t.Errorf("expected 1 category, got %d", len(categories))
	}

	if status := do(t, "DELETE", url+"/categories/"+category.ID, env.admin, nil, nil); status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}
	// Category images are removed before the response.
	if imageExists(env, "tools.png") {
		t.Error("expected category image to be deleted synchronously")
	}
}

func TestForbiddenBeforeBodyParsing(t *testing.T) {
	env := setupTestServer(t)
	url := env.server.URL

	var item model.Item
	if status := do(t, "POST", url+"/items", env.ana, map[string]any{"name": "Saw"}, &item); status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", status)
	}
	var category model.Category
	if status := do(t, "POST", url+"/categories", env.admin, map[string]any{"name": "tools"}, &category); status != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d", status)
	}

	tests := []struct {
		method string
		path   string
		token  string
		want   int
	}{
		{"PUT", "/items/" + item.ID, env.bob, http.StatusForbidden},
		{"PUT", "/items/missing", env.bob, http.StatusNotFound},
		{"POST", "/tags", env.ana, http.StatusForbidden},
		{"PUT", "/tags/any", env.ana, http.StatusForbidden},
		{"POST", "/categories", env.bob, http.StatusForbidden},
		{"PUT", "/categories/" + category.ID, env.bob, http.StatusForbidden},
		// Allowed callers still get the body rejected.
		{"PUT", "/items/" + item.ID, env.ana, http.StatusBadRequest},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, url+tt.path, strings.NewReader("{not json"))
		req.Header.Set("Authorization", "Bearer "+tt.token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s %s with malformed body: expected %d, got %d", tt.method, tt.path, tt.want, resp.StatusCode)
		}
	}
}
