package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	recipeapp "github.com/cookbook/api/internal/application/recipe"
	"github.com/cookbook/api/internal/infrastructure/logger"
	"github.com/cookbook/api/internal/interfaces/http/middleware"
	"github.com/cookbook/api/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeService is the application service behind /recipes/
type RecipeService interface {
	List(ctx context.Context) ([]recipeapp.RecipeResponse, error)
	GetByID(ctx context.Context, id uint) (*recipeapp.RecipeResponse, error)
	Create(ctx context.Context, req recipeapp.CreateRecipeRequest) (*recipeapp.RecipeResponse, error)
	Update(ctx context.Context, id uint, req recipeapp.CreateRecipeRequest) (*recipeapp.RecipeResponse, error)
	Patch(ctx context.Context, id uint, req recipeapp.PatchRecipeRequest) (*recipeapp.RecipeResponse, error)
	Delete(ctx context.Context, id uint) error
	OpenFile(ctx context.Context, id uint) (io.ReadCloser, string, error)
}

// RecipeHandler serves the recipes collection and the attached PDFs
type RecipeHandler struct {
	BaseHandler
	service RecipeService
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(service RecipeService) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// RecipeRoutes mounts the handler at /recipes/, plus the PDF download
func RecipeRoutes(h *RecipeHandler) *router.Resource {
	return router.NewCRUDResource("recipes", h).
		Handle(http.MethodGet, "/:id/pdf/", h.DownloadPDF)
}

// List godoc
//
//	@ID				listRecipes
//	@Summary		List recipes
//	@Description	List every recipe with its associations and PDF state
//	@Tags			recipes
//	@Produce		json
//	@Success		200	{array}		recipeapp.RecipeResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/recipes/ [get]
func (h *RecipeHandler) List(c *gin.Context) {
	recipes, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, recipes)
}

// Get godoc
//
//	@ID				getRecipe
//	@Summary		Get a recipe
//	@Tags			recipes
//	@Produce		json
//	@Param			id	path		int	true	"Recipe ID"
//	@Success		200	{object}	recipeapp.RecipeResponse
//	@Failure		404
//	@Router			/recipes/{id}/ [get]
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	r, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, r)
}

// Create godoc
//
//	@ID				createRecipe
//	@Summary		Create a recipe
//	@Description	A non-empty url queues a PDF snapshot of the page. The response
//	@Description	returns at once with pdf_status "pending" and a null file_url.
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recipeapp.CreateRecipeRequest	true	"Recipe"
//	@Success		201		{object}	recipeapp.RecipeResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Router			/recipes/ [post]
func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeapp.CreateRecipeRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	r, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// Update godoc
//
//	@ID				updateRecipe
//	@Summary		Replace a recipe
//	@Description	A url different from the stored one replaces the attached PDF
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Recipe ID"
//	@Param			request	body		recipeapp.CreateRecipeRequest	true	"Recipe"
//	@Success		200		{object}	recipeapp.RecipeResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		404
//	@Failure		409		{object}	ErrorResponse
//	@Router			/recipes/{id}/ [put]
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok || !h.exists(c, id) {
		return
	}
	var req recipeapp.CreateRecipeRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	r, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, r)
}

// Patch godoc
//
//	@ID				patchRecipe
//	@Summary		Partially update a recipe
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Recipe ID"
//	@Param			request	body		recipeapp.PatchRecipeRequest	true	"Fields to change"
//	@Success		200		{object}	recipeapp.RecipeResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		404
//	@Failure		409		{object}	ErrorResponse
//	@Router			/recipes/{id}/ [patch]
func (h *RecipeHandler) Patch(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok || !h.exists(c, id) {
		return
	}
	var req recipeapp.PatchRecipeRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	r, err := h.service.Patch(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, r)
}

// Delete godoc
//
//	@ID				deleteRecipe
//	@Summary		Delete a recipe
//	@Description	Cancels any running PDF job and removes the attached file
//	@Tags			recipes
//	@Param			id	path	int	true	"Recipe ID"
//	@Success		204
//	@Failure		404
//	@Router			/recipes/{id}/ [delete]
func (h *RecipeHandler) Delete(c *gin.Context) {
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

// DownloadPDF godoc
//
//	@ID				downloadRecipePDF
//	@Summary		Download the attached PDF
//	@Tags			recipes
//	@Produce		application/pdf
//	@Param			id	path	int	true	"Recipe ID"
//	@Success		200	{file}	binary
//	@Failure		404
//	@Router			/recipes/{id}/pdf/ [get]
func (h *RecipeHandler) DownloadPDF(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	rc, filename, err := h.service.OpenFile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			logger.Request(c).Warn("failed to close pdf reader", zap.Uint("recipe_id", id), zap.Error(cerr))
		}
	}()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, filename),
	})
}

// exists answers 404 for an unknown id before the body is looked at
func (h *RecipeHandler) exists(c *gin.Context, id uint) bool {
	if _, err := h.service.GetByID(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}
