package apikeys

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/auth"
	"lifeway-backend/internal/shared/server/middleware"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	a := &auth.Authenticator{Secret: "root-secret", Keys: svc}
	NewHandler(svc).RegisterRoutes(r.Group("/api"), middleware.AdminAuth(a))
	return r
}

func call(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestKeyLifecycle(t *testing.T) {
	r := newRouter(NewService(NewMemoryRepo()))

	if resp := call(r, http.MethodGet, "/api/admin/api-keys", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	resp := call(r, http.MethodPost, "/api/admin/api-keys", "root-secret", `{"name":"ops"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(created.Token) != 64 {
		t.Fatalf("expected 64-char token, got %q", created.Token)
	}

	// the new key itself authenticates admin routes
	resp = call(r, http.MethodGet, "/api/admin/api-keys", created.Token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with api key, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), created.Token) {
		t.Fatalf("list leaked the plain token: %s", resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), created.Token[:8]+"********") {
		t.Fatalf("expected masked token in list: %s", resp.Body.String())
	}

	if resp := call(r, http.MethodDelete, "/api/admin/api-keys/"+created.ID, "root-secret", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on revoke, got %d", resp.Code)
	}
	if resp := call(r, http.MethodGet, "/api/admin/api-keys", created.Token, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("revoked key should be rejected, got %d", resp.Code)
	}
}

func TestCreateWithoutName(t *testing.T) {
	r := newRouter(NewService(NewMemoryRepo()))
	resp := call(r, http.MethodPost, "/api/admin/api-keys", "root-secret", `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
