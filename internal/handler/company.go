package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/directory-service/internal/service"
	"github.com/maxviazov/directory-service/pkg/response"
)

type CompanyHandler struct {
	svc      service.CompanyService
	contacts service.ContactService
}

func NewCompanyHandler(svc service.CompanyService, contacts service.ContactService) *CompanyHandler {
	return &CompanyHandler{svc: svc, contacts: contacts}
}

func (h *CompanyHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/companies")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		// company_id is shared with the nested contacts route.
		g.GET("/:company_id", h.getByID)
		g.GET("/:company_id/contacts", h.listContacts)
	}
}

func (h *CompanyHandler) create(c *gin.Context) {
	var req service.CreateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	company, err := h.svc.CreateCompany(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, company)
}

func (h *CompanyHandler) getByID(c *gin.Context) {
	company, err := h.svc.GetCompany(c.Request.Context(), c.Param("company_id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, company)
}

func (h *CompanyHandler) list(c *gin.Context) {
	env, err := h.svc.ListCompanies(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, env)
}

func (h *CompanyHandler) listContacts(c *gin.Context) {
	env, err := h.contacts.ListCompanyContacts(c.Request.Context(), c.Param("company_id"), c.Request.URL.Query())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, env)
}
