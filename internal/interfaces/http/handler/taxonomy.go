package handler

import (
	"context"

	taxonomyapp "github.com/cookbook/api/internal/application/taxonomy"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/cookbook/api/internal/interfaces/http/middleware"
	"github.com/cookbook/api/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// TermService is the application service behind one taxonomy collection
type TermService interface {
	Kind() taxonomy.Kind
	List(ctx context.Context) ([]taxonomyapp.TermResponse, error)
	GetByID(ctx context.Context, id uint) (*taxonomyapp.TermResponse, error)
	Create(ctx context.Context, req taxonomyapp.CreateTermRequest) (*taxonomyapp.TermResponse, error)
	Update(ctx context.Context, id uint, req taxonomyapp.CreateTermRequest) (*taxonomyapp.TermResponse, error)
	Patch(ctx context.Context, id uint, req taxonomyapp.PatchTermRequest) (*taxonomyapp.TermResponse, error)
	Delete(ctx context.Context, id uint) error
}

// TaxonomyHandler serves the cuisines, diets, ingredients and occasions
// collections. One handler is mounted per kind.
type TaxonomyHandler struct {
	BaseHandler
	service TermService
}

// NewTaxonomyHandler creates a handler for the service's kind
func NewTaxonomyHandler(service TermService) *TaxonomyHandler {
	return &TaxonomyHandler{service: service}
}

// TaxonomyRoutes mounts the handler at /<plural>/
func TaxonomyRoutes(h *TaxonomyHandler) *router.Resource {
	return router.NewCRUDResource(h.service.Kind().Plural(), h)
}

// List godoc
//
//	@ID				listTaxonomyTerms
//	@Summary		List terms
//	@Description	List every term of a taxonomy, ordered by name
//	@Tags			taxonomy
//	@Produce		json
//	@Param			kind	path		string	true	"Taxonomy"	Enums(cuisines, diets, ingredients, occasions)
//	@Success		200		{array}		taxonomyapp.TermResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/{kind}/ [get]
func (h *TaxonomyHandler) List(c *gin.Context) {
	terms, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, terms)
}

// Get godoc
//
//	@ID				getTaxonomyTerm
//	@Summary		Get a term
//	@Tags			taxonomy
//	@Produce		json
//	@Param			kind	path		string	true	"Taxonomy"	Enums(cuisines, diets, ingredients, occasions)
//	@Param			id		path		int		true	"Term ID"
//	@Success		200		{object}	taxonomyapp.TermResponse
//	@Failure		404
//	@Router			/{kind}/{id}/ [get]
func (h *TaxonomyHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	term, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, term)
}

// Create godoc
//
//	@ID				createTaxonomyTerm
//	@Summary		Create a term
//	@Description	Names are unique per taxonomy and trimmed before saving
//	@Tags			taxonomy
//	@Accept			json
//	@Produce		json
//	@Param			kind	path		string						true	"Taxonomy"	Enums(cuisines, diets, ingredients, occasions)
//	@Param			request	body		taxonomyapp.CreateTermRequest	true	"Term"
//	@Success		201		{object}	taxonomyapp.TermResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Router			/{kind}/ [post]
func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req taxonomyapp.CreateTermRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	term, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, term)
}

// Update godoc
//
//	@ID				updateTaxonomyTerm
//	@Summary		Replace a term
//	@Tags			taxonomy
//	@Accept			json
//	@Produce		json
//	@Param			kind	path		string						true	"Taxonomy"	Enums(cuisines, diets, ingredients, occasions)
//	@Param			id		path		int							true	"Term ID"
//	@Param			request	body		taxonomyapp.CreateTermRequest	true	"Term"
//	@Success		200		{object}	taxonomyapp.TermResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		404
//	@Router			/{kind}/{id}/ [put]
func (h *TaxonomyHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok || !h.exists(c, id) {
		return
	}
	var req taxonomyapp.CreateTermRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	term, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, term)
}

// Patch godoc
//
//	@ID				patchTaxonomyTerm
//	@Summary		Partially update a term
//	@Tags			taxonomy
//	@Accept			json
//	@Produce		json
//	@Param			kind	path		string						true	"Taxonomy"	Enums(cuisines, diets, ingredients, occasions)
//	@Param			id		path		int							true	"Term ID"
//	@Param			request	body		taxonomyapp.PatchTermRequest	true	"Fields to change"
//	@Success		200		{object}	taxonomyapp.TermResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		404
//	@Router			/{kind}/{id}/ [patch]
func (h *TaxonomyHandler) Patch(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok || !h.exists(c, id) {
		return
	}
	var req taxonomyapp.PatchTermRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	term, err := h.service.Patch(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, term)
}

// Delete godoc
//
//	@ID				deleteTaxonomyTerm
//	@Summary		Delete a term
//	@Description	Recipes lose the association, they are not deleted
//	@Tags			taxonomy
//	@Param			kind	path	string	true	"Taxonomy"	Enums(cuisines, diets, ingredients, occasions)
//	@Param			id		path	int		true	"Term ID"
//	@Success		204
//	@Failure		404
//	@Router			/{kind}/{id}/ [delete]
func (h *TaxonomyHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// exists answers 404 for an unknown id before the body is looked at
func (h *TaxonomyHandler) exists(c *gin.Context, id uint) bool {
	if _, err := h.service.GetByID(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}
