package models

import (
	"github.com/cookbook/api/internal/domain/taxonomy"
)

// TermModel is the row shape shared by the four taxonomy tables.
// Queries pick the table with db.Table(kind.Plural()).
type TermModel struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null"`
}

// ToDomain converts TermModel to a domain Term of the given kind
func (m *TermModel) ToDomain(kind taxonomy.Kind) *taxonomy.Term {
	return &taxonomy.Term{
		BaseEntity: m.BaseModel.ToDomain(),
		Kind:       kind,
		Name:       m.Name,
	}
}

// FromDomain populates TermModel from a domain Term
func (m *TermModel) FromDomain(t *taxonomy.Term) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Name = t.Name
}

// TermModelFromDomain creates a new TermModel from a domain Term
func TermModelFromDomain(t *taxonomy.Term) *TermModel {
	m := &TermModel{}
	m.FromDomain(t)
	return m
}

// The concrete table types below exist for AutoMigrate only: each carries its
// own unique index name, since SQLite index names are database-wide.

// CuisineModel is the migration model for the cuisines table
type CuisineModel struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null;uniqueIndex:uix_cuisines_name"`
}

// TableName returns the table name for CuisineModel
func (CuisineModel) TableName() string { return taxonomy.KindCuisine.Plural() }

// DietModel is the migration model for the diets table
type DietModel struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null;uniqueIndex:uix_diets_name"`
}

// TableName returns the table name for DietModel
func (DietModel) TableName() string { return taxonomy.KindDiet.Plural() }

// IngredientModel is the migration model for the ingredients table
type IngredientModel struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null;uniqueIndex:uix_ingredients_name"`
}

// TableName returns the table name for IngredientModel
func (IngredientModel) TableName() string { return taxonomy.KindIngredient.Plural() }

// OccasionModel is the migration model for the occasions table
type OccasionModel struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null;uniqueIndex:uix_occasions_name"`
}

// TableName returns the table name for OccasionModel
func (OccasionModel) TableName() string { return taxonomy.KindOccasion.Plural() }
