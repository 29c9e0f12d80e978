package imagesearch

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/server/respond"
)

// Handler exposes the searcher over HTTP.
type Handler struct {
	Searcher *Searcher
}

// NewHandler constructs a Handler.
func NewHandler(s *Searcher) *Handler {
	return &Handler{Searcher: s}
}

// RegisterRoutes attaches image routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/images/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Parâmetro q é obrigatório", nil)
		return
	}

	var (
		img *Image
		err error
	)
	if c.Query("fallback") == "true" {
		img, err = h.Searcher.FindForArticle(c.Request.Context(), []string{q})
	} else {
		img, err = h.Searcher.Search(c.Request.Context(), q)
	}
	if err != nil {
		respond.Internal(c, "Erro ao buscar imagem", err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"image": img})
}
