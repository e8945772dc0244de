package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/directory-service/internal/metrics"
	"github.com/maxviazov/directory-service/internal/service"
)

// Register mounts all public routes on the given engine. checks feed the
// readiness probe; m may be nil.
func Register(r *gin.Engine, checks []Check, companySvc service.CompanyService, contactSvc service.ContactService, m *metrics.Metrics) {
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h := NewHealthHandler(checks...)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewCompanyHandler(companySvc, contactSvc).Register(api)
		NewContactHandler(contactSvc).Register(api)
	}
}
