package catalog

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

// RegisterRoutes attaches /catalog routes. PUT goes through admin.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/catalog/:table", h.list)
	rg.GET("/catalog/:table/:id", h.get)
	rg.PUT("/catalog/:table/:id", admin, h.update)
}

func (h *Handler) list(c *gin.Context) {
	params := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	rows, err := h.Svc.List(c.Request.Context(), c.Param("table"), params)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, rows)
}

func (h *Handler) get(c *gin.Context) {
	row, err := h.Svc.Get(c.Request.Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, row)
}

func (h *Handler) update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
		return
	}
	row, err := h.Svc.Update(c.Request.Context(), c.Param("table"), c.Param("id"), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, row)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownTable):
		respond.Error(c, http.StatusNotFound, "unknown_table", "Tabela não encontrada", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Não encontrado", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Parâmetros inválidos", nil)
	default:
		respond.Internal(c, "Erro ao consultar catálogo", err)
	}
}
