package taxonomy

import (
	"github.com/cookbook/api/internal/domain/taxonomy"
)

// CreateTermRequest is the body of POST and PUT on a taxonomy collection
type CreateTermRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// PatchTermRequest is the body of PATCH; an absent name changes nothing
type PatchTermRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

// TermResponse is the representation of a cuisine, diet, ingredient or occasion
type TermResponse struct {
	ID   uint   `json:"id" example:"1"`
	Name string `json:"name" example:"Vietnamese"`
}

// ToTermResponse converts a domain term to its representation
func ToTermResponse(t *taxonomy.Term) TermResponse {
	return TermResponse{ID: t.ID, Name: t.Name}
}

// ToTermResponses converts a list of terms, never returning nil
func ToTermResponses(terms []taxonomy.Term) []TermResponse {
	out := make([]TermResponse, 0, len(terms))
	for i := range terms {
		out = append(out, ToTermResponse(&terms[i]))
	}
	return out
}
