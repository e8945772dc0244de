package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/directory-service/internal/service"
	"github.com/maxviazov/directory-service/pkg/response"
)

type ContactHandler struct {
	svc service.ContactService
}

func NewContactHandler(svc service.ContactService) *ContactHandler { return &ContactHandler{svc: svc} }

func (h *ContactHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/contacts")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/reachable", h.listReachable)
		g.GET("/:id", h.getByID)
	}
}

func (h *ContactHandler) create(c *gin.Context) {
	var req service.CreateContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	contact, err := h.svc.CreateContact(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, contact)
}

func (h *ContactHandler) getByID(c *gin.Context) {
	contact, err := h.svc.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, contact)
}

func (h *ContactHandler) list(c *gin.Context) {
	env, err := h.svc.ListContacts(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, env)
}

func (h *ContactHandler) listReachable(c *gin.Context) {
	env, err := h.svc.ListReachableContacts(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, env)
}
