package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-notes/internal/http/middleware"
	"github.com/smallbiznis/valora-notes/internal/service"
)

// TenantHandler exposes the plan upgrade endpoint.
type TenantHandler struct {
	Tenants *service.TenantService
}

// NewTenantHandler creates the handler set.
func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{Tenants: tenants}
}

// Upgrade moves the tenant in the path to the pro plan. Only an admin
// of that tenant may call it; repeating the call is a no-op success.
func (h *TenantHandler) Upgrade(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	result, err := h.Tenants.Upgrade(c.Request.Context(), caller, c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.AlreadyPro {
		c.JSON(http.StatusOK, gin.H{"message": "tenant already upgraded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenant": gin.H{
			"slug": result.Tenant.Slug,
			"name": result.Tenant.Name,
			"plan": string(result.Tenant.Plan),
		},
	})
}
