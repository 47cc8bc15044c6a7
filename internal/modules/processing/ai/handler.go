package ai

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW)
	g.GET("/models", h.getAvailableModels)
	g.GET("/models/:providerId", h.getModelsForProvider)
	g.POST("/test/:providerId", h.testProviderConnection)
}

// GET /ai/models  [auth]
func (h *Handler) getAvailableModels(c *gin.Context) {
	out := modelsOverview{Providers: make([]providerModelsResponse, 0, len(h.svc.cfg.Providers))}
	for _, p := range h.svc.cfg.Providers {
		if !p.Enabled || p.APIKey == "" {
			continue
		}
		out.Providers = append(out.Providers, providerModelsResponse{
			ProviderID:   p.ID,
			ProviderName: p.Name,
			ProviderType: p.Type,
			Models:       modelsFromProvider(p),
		})
	}
	if p := selectAIProvider(h.svc.cfg, h.svc.cfg.SummaryModel); p != nil {
		out.Summary = &assignmentResponse{ProviderID: p.ID, Model: p.DefaultModel}
	}
	if p := h.svc.assistProvider(); p != nil {
		out.Assist = &assignmentResponse{ProviderID: p.ID, Model: p.DefaultModel}
	}
	response.OK(c, out)
}

// GET /ai/models/:providerId?fetch=true  [auth]
func (h *Handler) getModelsForProvider(c *gin.Context) {
	providerID := c.Param("providerId")
	for _, p := range h.svc.cfg.Providers {
		if p.ID != providerID {
			continue
		}
		out := providerModelsResponse{
			ProviderID:   p.ID,
			ProviderName: p.Name,
			ProviderType: p.Type,
			Models:       modelsFromProvider(p),
		}
		if c.Query("fetch") == "true" && p.APIKey != "" {
			fetched, err := h.svc.call.fetchModelsFromProvider(c.Request.Context(), p)
			if err != nil {
				out.Error = err.Error()
			} else if len(fetched) > 0 {
				out.Models = fetched
			}
		}
		response.OK(c, out)
		return
	}
	response.NotFoundMsg(c, "AI provider not found")
}

// POST /ai/test/:providerId  [auth]
func (h *Handler) testProviderConnection(c *gin.Context) {
	providerID := c.Param("providerId")
	for _, p := range h.svc.cfg.Providers {
		if p.ID != providerID {
			continue
		}
		if p.APIKey == "" {
			response.BadRequest(c, "provider has no api key")
			return
		}
		provider := p
		if _, err := h.svc.generate(c.Request.Context(), &provider, "", "Say OK"); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
			return
		}
		response.OK(c, gin.H{"ok": true})
		return
	}
	response.NotFoundMsg(c, "AI provider not found")
}
