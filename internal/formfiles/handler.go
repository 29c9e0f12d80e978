package formfiles

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the file store.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches the save-form routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/save-form", h.save)
	rg.GET("/save-form", h.get)
}

type saveRequest struct {
	Email    string         `json:"email"`
	FormData map[string]any `json:"formData"`
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Email é obrigatório", nil)
		return
	}

	key, err := h.Store.Save(c.Request.Context(), req.Email, req.FormData)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Email inválido", nil)
			return
		}
		respond.Internal(c, "Erro ao salvar formulário", err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "file": key})
}

func (h *Handler) get(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Email é obrigatório", nil)
		return
	}

	doc, err := h.Store.Get(c.Request.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Email inválido", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Formulário não encontrado", nil)
		default:
			respond.Internal(c, "Erro ao buscar formulário", err)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "data": doc})
}
