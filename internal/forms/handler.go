package forms

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/server/middleware"
	"lifeway-backend/internal/shared/server/respond"
)

const (
	msgEmailRequired = "Email é obrigatório"
	msgInvalidBody   = "Dados inválidos"
	msgSaveFailed    = "Não foi possível salvar o formulário"
	formPageRedirect = "/multistep-form"
)

// Handler wires HTTP handlers to the prober.
type Handler struct {
	Prober *Prober
}

// NewHandler constructs a Handler.
func NewHandler(p *Prober) *Handler {
	return &Handler{Prober: p}
}

// RegisterRoutes attaches multistep form routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/multistep-form", h.save)
	rg.GET("/multistep-form", h.get)
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgInvalidBody, nil)
		return
	}

	res, err := h.Prober.Save(c.Request.Context(), Submission{
		Identifier: req.identifier(),
		FormData:   req.payload(),
		Completed:  req.Completed,
		Qualified:  req.Qualified,
	})
	if err != nil {
		var probeErr *ProbeError
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", msgEmailRequired, nil)
		case errors.As(err, &probeErr):
			respond.Error(c, http.StatusInternalServerError, "persistence_failed", msgSaveFailed, gin.H{"attempts": probeErr.Attempts})
		default:
			respond.Internal(c, msgSaveFailed, err)
		}
		return
	}

	c.Set(middleware.LogLayoutKey, res.Record.Layout)
	respond.JSON(c, http.StatusOK, gin.H{
		"success": true,
		"data":    toResponse(res.Record),
		"layout":  res.Record.Layout,
	})
}

func (h *Handler) get(c *gin.Context) {
	identifier := strings.TrimSpace(c.Query("email"))
	if identifier == "" {
		identifier = strings.TrimSpace(c.Query("user_id"))
	}
	if identifier == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgEmailRequired, nil)
		return
	}

	rec, err := h.Prober.Find(c.Request.Context(), identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.JSON(c, http.StatusOK, gin.H{"success": false, "found": false, "redirect": formPageRedirect})
			return
		}
		respond.Internal(c, "Erro ao buscar formulário", err)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"success": true, "data": toResponse(rec)})
}
