package reports

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/shared/server/middleware"
	"lifeway-backend/internal/shared/server/respond"
)

const maxBodyBytes = 1 << 20

// Routes served by the report generators, used by the rate limiter.
var GeneratorPaths = []string{"/api/visa-match", "/api/get-opportunity", "/api/criador-sonhos"}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/visa-match", h.generate(ToolVisaMatch))
	rg.POST("/get-opportunity", h.generate(ToolGetOpportunity))
	rg.POST("/criador-sonhos", h.generate(ToolCriadorSonhos))
	rg.GET("/reports", h.list)
}

func (h *Handler) generate(tool string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.LogToolTypeKey, tool)

		input, err := decodeBody(c)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Dados inválidos", nil)
			return
		}

		res, err := h.Svc.Generate(c.Request.Context(), tool, input)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				respond.Error(c, http.StatusBadRequest, "validation_error", "Email é obrigatório", nil)
			case errors.Is(err, ErrGeneration):
				respond.Error(c, http.StatusInternalServerError, "llm_error", "Erro ao gerar relatório", nil)
			default:
				respond.Internal(c, "Erro ao gerar relatório", err)
			}
			return
		}

		body := gin.H{"success": true, "report": res.Report.Content, "saved": res.Saved}
		if res.Saved {
			body["reportId"] = res.Report.ID
			c.Set(middleware.LogReportIDKey, res.Report.ID)
		}
		respond.JSON(c, http.StatusOK, body)
	}
}

func (h *Handler) list(c *gin.Context) {
	reports, err := h.Svc.List(c.Request.Context(), c.Query("email"), c.Query("tool_type"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Email é obrigatório", nil)
		case errors.Is(err, ErrUnknownTool):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Ferramenta inválida", nil)
		default:
			respond.Internal(c, "Erro ao buscar relatórios", err)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true, "reports": reports})
}

// decodeBody reads a JSON object body. An empty body is an empty object so
// the email check can answer it.
func decodeBody(c *gin.Context) (map[string]any, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	input := map[string]any{}
	if len(raw) == 0 {
		return input, nil
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}
