package handlers

import (
	"net/http"

	"github.com/Dosada05/tcg-tournaments/services"
)

type TemplateHandler struct {
	templateService services.TemplateService
}

func NewTemplateHandler(ts services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: ts}
}

// CreateHandler godoc
// @Summary  Save a tournament template
// @Tags     templates
// @Accept   json
// @Produce  json
// @Param    input  body  services.CreateTemplateInput  true  "Template"
// @Success  201  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /templates [post]
func (h *TemplateHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTemplateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tpl, err := h.templateService.CreateTemplate(r.Context(), actorFrom(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"template": tpl}, nil)
}

// ListHandler godoc
// @Summary  Templates of the caller, newest first
// @Tags     templates
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /templates [get]
func (h *TemplateHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.ListTemplates(r.Context(), actorFrom(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"templates": templates}, nil)
}

// GetByIDHandler godoc
// @Summary  One saved template
// @Tags     templates
// @Produce  json
// @Param    templateID  path  string  true  "Template ID"
// @Success  200  {object}  map[string]interface{}
// @Failure  404  {object}  map[string]interface{}
// @Security BearerAuth
// @Router   /templates/{templateID} [get]
func (h *TemplateHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "templateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tpl, err := h.templateService.GetTemplate(r.Context(), actorFrom(r), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"template": tpl}, nil)
}

// DeleteHandler godoc
// @Summary  Delete a saved template
// @Tags     templates
// @Param    templateID  path  string  true  "Template ID"
// @Success  204
// @Security BearerAuth
// @Router   /templates/{templateID} [delete]
func (h *TemplateHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "templateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.templateService.DeleteTemplate(r.Context(), actorFrom(r), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
