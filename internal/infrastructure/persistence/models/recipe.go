package models

import (
	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// RecipeModel is the GORM model for the recipes table
type RecipeModel struct {
	AggregateModel
	Name      string `gorm:"type:varchar(255);not null;uniqueIndex:uix_recipes_name"`
	URL       string `gorm:"column:url;type:varchar(2048);not null;default:''"`
	Note      string `gorm:"type:text;not null;default:''"`
	File      string `gorm:"type:varchar(255);not null;default:''"`
	PDFStatus string `gorm:"column:pdf_status;type:varchar(16);not null;default:'';index"`
	PDFError  string `gorm:"column:pdf_error;type:text;not null;default:''"`
	PDFJobID  string `gorm:"column:pdf_job_id;type:varchar(36);not null;default:''"`
}

// TableName returns the table name for RecipeModel
func (RecipeModel) TableName() string {
	return "recipes"
}

// ToDomain converts RecipeModel to a domain Recipe without associations
func (m *RecipeModel) ToDomain() *recipe.Recipe {
	r := &recipe.Recipe{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		URL:               m.URL,
		Note:              m.Note,
		FileKey:           m.File,
		PDFStatus:         recipe.PDFStatus(m.PDFStatus),
		PDFError:          m.PDFError,
	}
	if m.PDFJobID != "" {
		if id, err := uuid.Parse(m.PDFJobID); err == nil {
			r.PDFJobID = id
		}
	}
	for _, kind := range taxonomy.AllKinds() {
		r.SetAssociations(kind, []taxonomy.Term{})
	}
	return r
}

// FromDomain populates RecipeModel from a domain Recipe
func (m *RecipeModel) FromDomain(r *recipe.Recipe) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.URL = r.URL
	m.Note = r.Note
	m.File = r.FileKey
	m.PDFStatus = string(r.PDFStatus)
	m.PDFError = r.PDFError
	m.PDFJobID = ""
	if r.PDFJobID != uuid.Nil {
		m.PDFJobID = r.PDFJobID.String()
	}
}

// RecipeModelFromDomain creates a new RecipeModel from a domain Recipe
func RecipeModelFromDomain(r *recipe.Recipe) *RecipeModel {
	m := &RecipeModel{}
	m.FromDomain(r)
	return m
}

// JoinTable returns the association table linking recipes to a taxonomy kind
func JoinTable(kind taxonomy.Kind) string {
	return "recipe_" + kind.Plural()
}

// JoinColumn returns the column of a join table referencing the taxonomy term
func JoinColumn(kind taxonomy.Kind) string {
	return string(kind) + "_id"
}

// RecipeCuisineModel links recipes and cuisines
type RecipeCuisineModel struct {
	RecipeID  uint `gorm:"primaryKey;autoIncrement:false"`
	CuisineID uint `gorm:"primaryKey;autoIncrement:false;index:idx_recipe_cuisines_cuisine"`
}

// TableName returns the table name for RecipeCuisineModel
func (RecipeCuisineModel) TableName() string { return JoinTable(taxonomy.KindCuisine) }

// RecipeDietModel links recipes and diets
type RecipeDietModel struct {
	RecipeID uint `gorm:"primaryKey;autoIncrement:false"`
	DietID   uint `gorm:"primaryKey;autoIncrement:false;index:idx_recipe_diets_diet"`
}

// TableName returns the table name for RecipeDietModel
func (RecipeDietModel) TableName() string { return JoinTable(taxonomy.KindDiet) }

// RecipeIngredientModel links recipes and ingredients
type RecipeIngredientModel struct {
	RecipeID     uint `gorm:"primaryKey;autoIncrement:false"`
	IngredientID uint `gorm:"primaryKey;autoIncrement:false;index:idx_recipe_ingredients_ingredient"`
}

// TableName returns the table name for RecipeIngredientModel
func (RecipeIngredientModel) TableName() string { return JoinTable(taxonomy.KindIngredient) }

// RecipeOccasionModel links recipes and occasions
type RecipeOccasionModel struct {
	RecipeID   uint `gorm:"primaryKey;autoIncrement:false"`
	OccasionID uint `gorm:"primaryKey;autoIncrement:false;index:idx_recipe_occasions_occasion"`
}

// TableName returns the table name for RecipeOccasionModel
func (RecipeOccasionModel) TableName() string { return JoinTable(taxonomy.KindOccasion) }
