package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/pkg/response"
)

type AuditController struct {
	audit *services.AuditService
}

func NewAuditController(audit *services.AuditService) *AuditController {
	return &AuditController{audit: audit}
}

// All audits every product and lists orphan orders.
func (c *AuditController) All(w http.ResponseWriter, r *http.Request) {
	rep, err := c.audit.AuditAll(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, rep)
}
