package recipe

import (
	"time"

	app "github.com/cookbook/api/internal/application/taxonomy"
	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/taxonomy"
)

// AssociationIDs carries the write-only id lists of a recipe request.
// An omitted or empty list leaves the association set untouched.
type AssociationIDs struct {
	CuisineIDs    []uint `json:"cuisine_ids"`
	DietIDs       []uint `json:"diet_ids"`
	IngredientIDs []uint `json:"ingredient_ids"`
	OccasionIDs   []uint `json:"occasion_ids"`
}

// ByKind returns the id list supplied for a taxonomy kind
func (a AssociationIDs) ByKind(kind taxonomy.Kind) []uint {
	switch kind {
	case taxonomy.KindCuisine:
		return a.CuisineIDs
	case taxonomy.KindDiet:
		return a.DietIDs
	case taxonomy.KindIngredient:
		return a.IngredientIDs
	case taxonomy.KindOccasion:
		return a.OccasionIDs
	}
	return nil
}

// CreateRecipeRequest is the body of POST and PUT
type CreateRecipeRequest struct {
	Name string `json:"name" binding:"required,max=255" example:"Pho"`
	URL  string `json:"url" binding:"omitempty,max=2048" example:"https://example.com/pho"`
	Note string `json:"note" example:"Use fresh herbs"`
	AssociationIDs
}

// PatchRecipeRequest is the body of PATCH. Only present fields are applied.
type PatchRecipeRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
	URL  *string `json:"url" binding:"omitempty,max=2048"`
	Note *string `json:"note"`
	AssociationIDs
}

// RecipeResponse is the representation of a recipe
type RecipeResponse struct {
	ID          uint               `json:"id"`
	Created     time.Time          `json:"created"`
	Name        string             `json:"name"`
	URL         string             `json:"url"`
	Note        string             `json:"note"`
	Cuisines    []app.TermResponse `json:"cuisines"`
	Diets       []app.TermResponse `json:"diets"`
	Ingredients []app.TermResponse `json:"ingredients"`
	Occasions   []app.TermResponse `json:"occasions"`
	FileURL     *string            `json:"file_url"`
	PDFStatus   *string            `json:"pdf_status" enums:"pending,succeeded,failed"`
	PDFError    string             `json:"pdf_error"`
}

// toRecipeResponse maps the aggregate. fileURL is nil when no file is attached.
func toRecipeResponse(r *recipe.Recipe, fileURL *string) RecipeResponse {
	resp := RecipeResponse{
		ID:          r.ID,
		Created:     r.CreatedAt,
		Name:        r.Name,
		URL:         r.URL,
		Note:        r.Note,
		Cuisines:    app.ToTermResponses(r.Associations(taxonomy.KindCuisine)),
		Diets:       app.ToTermResponses(r.Associations(taxonomy.KindDiet)),
		Ingredients: app.ToTermResponses(r.Associations(taxonomy.KindIngredient)),
		Occasions:   app.ToTermResponses(r.Associations(taxonomy.KindOccasion)),
		FileURL:     fileURL,
		PDFError:    r.PDFError,
	}
	if r.PDFStatus != recipe.PDFStatusNone {
		status := r.PDFStatus.String()
		resp.PDFStatus = &status
	}
	return resp
}
