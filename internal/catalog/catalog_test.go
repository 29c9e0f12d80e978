package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepo())
	err := svc.Insert(context.Background(), "cities", []Row{
		{"id": "c1", "name": "Orlando", "state": "FL", "is_featured": true, "is_capital": false},
		{"id": "c2", "name": "Austin", "state": "TX", "is_featured": true, "is_capital": true},
		{"id": "c3", "name": "Boston", "state": "MA", "is_featured": false, "is_capital": true},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Insert(context.Background(), "empresa", []Row{
		{"id": "e1", "nome": "Zeta Corp", "ativo": true, "patrocina_visto": true},
		{"id": "e2", "nome": "Alpha Ltda", "ativo": true, "patrocina_visto": false},
	}))
	return svc
}

func TestListFiltersAndSorts(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	rows, err := svc.List(ctx, "cities", map[string]string{"is_featured": "true"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Austin", rows[0]["name"])
	assert.Equal(t, "Orlando", rows[1]["name"])

	rows, err = svc.List(ctx, "cities", map[string]string{"q": "bos"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c3", rows[0]["id"])

	rows, err = svc.List(ctx, "empresa", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha Ltda", rows[0]["nome"])
}

func TestListIgnoresUnlistedParams(t *testing.T) {
	svc := seededService(t)
	rows, err := svc.List(context.Background(), "cities", map[string]string{"state": "FL", "population": "1"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestListRejectsBadBoolean(t *testing.T) {
	svc := seededService(t)
	_, err := svc.List(context.Background(), "cities", map[string]string{"is_capital": "sim"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnknownTable(t *testing.T) {
	svc := seededService(t)
	_, err := svc.List(context.Background(), "users", nil)
	assert.ErrorIs(t, err, ErrUnknownTable)
	_, err = svc.Update(context.Background(), "api_keys", "x", map[string]any{"role": "admin"})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestUpdateWhitelist(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "cities", "c1", map[string]any{"id": "other"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Update(ctx, "cities", "c1", map[string]any{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Update(ctx, "cities", "c1", map[string]any{"name": " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	row, err := svc.Update(ctx, "cities", "c1", map[string]any{"description": "Parques e tecnologia"})
	require.NoError(t, err)
	assert.Equal(t, "Parques e tecnologia", row["description"])
	assert.Equal(t, "Orlando", row["name"])

	_, err = svc.Update(ctx, "cities", "missing", map[string]any{"description": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertRequiresID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	err := svc.Insert(context.Background(), "schools", []Row{{"name": "Sem id"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func newRouter(svc *Service, admin gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"), admin)
	return r
}

func TestHandlerRoutes(t *testing.T) {
	r := newRouter(seededService(t), func(c *gin.Context) { c.Next() })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/catalog/cities?is_capital=true", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/catalog/planets", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/catalog/cities/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/catalog/empresa/e2", bytes.NewBufferString(`{"patrocina_visto":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"patrocina_visto":true`)
}

func TestHandlerUpdateRequiresAdmin(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	r := newRouter(seededService(t), deny)
	req := httptest.NewRequest(http.MethodPut, "/api/catalog/cities/c1", bytes.NewBufferString(`{"name":"X"}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
