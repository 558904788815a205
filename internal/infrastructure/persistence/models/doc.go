// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free from
// ORM concerns; repositories convert between the two with ToDomain/FromDomain mappers.
//
// Tables:
//   - cuisines, diets, ingredients, occasions: taxonomy terms (taxonomy.go)
//   - recipes: recipe rows including PDF job state (recipe.go)
//   - recipe_cuisines, recipe_diets, recipe_ingredients, recipe_occasions: association sets
package models
