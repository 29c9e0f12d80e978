package blog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches blog routes. Writes go through admin.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/blog", h.list)
	rg.GET("/blog/categories", h.listCategories)
	rg.GET("/blog/tags", h.listTags)
	rg.GET("/blog/slug/:slug", h.getBySlug)
	rg.GET("/blog/:id", h.get)
	rg.POST("/blog/:id/view", h.view)

	rg.POST("/blog", admin, h.create)
	rg.PUT("/blog/:id", admin, h.update)
	rg.DELETE("/blog/:id", admin, h.delete)
	rg.POST("/blog/categories", admin, h.createCategory)
	rg.POST("/blog/tags", admin, h.createTag)
}

func (h *Handler) list(c *gin.Context) {
	f := ListFilter{CategoryID: strings.TrimSpace(c.Query("category"))}
	if raw := c.Query("published"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Parâmetro published inválido", nil)
			return
		}
		f.Published = &v
	}
	var err error
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Parâmetro limit inválido", nil)
		return
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Parâmetro offset inválido", nil)
		return
	}

	posts, err := h.Svc.ListPosts(c.Request.Context(), f)
	if err != nil {
		respond.Internal(c, "Erro ao buscar posts", err)
		return
	}
	respond.JSON(c, http.StatusOK, posts)
}

func (h *Handler) get(c *gin.Context) {
	post, err := h.Svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, post)
}

func (h *Handler) getBySlug(c *gin.Context) {
	post, err := h.Svc.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, post)
}

func (h *Handler) view(c *gin.Context) {
	n, err := h.Svc.RecordView(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"view_count": n})
}

func (h *Handler) create(c *gin.Context) {
	var in PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
		return
	}
	post, err := h.Svc.CreatePost(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, post)
}

func (h *Handler) update(c *gin.Context) {
	var in PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
		return
	}
	post, err := h.Svc.UpdatePost(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, post)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true})
}

func (h *Handler) listCategories(c *gin.Context) {
	cats, err := h.Svc.ListCategories(c.Request.Context())
	if err != nil {
		respond.Internal(c, "Erro ao buscar categorias", err)
		return
	}
	respond.JSON(c, http.StatusOK, cats)
}

func (h *Handler) listTags(c *gin.Context) {
	tags, err := h.Svc.ListTags(c.Request.Context())
	if err != nil {
		respond.Internal(c, "Erro ao buscar tags", err)
		return
	}
	respond.JSON(c, http.StatusOK, tags)
}

type taxonomyRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(c *gin.Context) {
	var req taxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
		return
	}
	cat, err := h.Svc.CreateCategory(c.Request.Context(), req.Name, req.Slug, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, cat)
}

func (h *Handler) createTag(c *gin.Context) {
	var req taxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
		return
	}
	tag, err := h.Svc.CreateTag(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, tag)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos ou incompletos", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Não encontrado", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "Slug já existe", nil)
	default:
		respond.Internal(c, "Erro interno do servidor", err)
	}
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
