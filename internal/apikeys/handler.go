package apikeys

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches /admin/api-keys; every route goes through admin.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	g := rg.Group("/admin/api-keys", admin)
	g.POST("", h.create)
	g.GET("", h.list)
	g.DELETE("/:id", h.revoke)
}

type createRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type keyView struct {
	APIKey
	Token string `json:"token"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), req.Name, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	keys, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]keyView, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyView{APIKey: k, Token: k.Masked()})
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) revoke(c *gin.Context) {
	if err := h.Svc.Revoke(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Nome é obrigatório", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Chave não encontrada", nil)
	default:
		respond.Internal(c, "Erro interno do servidor", err)
	}
}
