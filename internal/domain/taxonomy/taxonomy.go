// Package taxonomy holds the lookup entities a recipe is classified by:
// cuisines, diets, ingredients and occasions. They share one shape, a unique
// name per kind, and differ only in the table they are stored in.
package taxonomy

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cookbook/api/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest name accepted for any taxonomy term
const MaxNameLength = 255

// Kind identifies one of the taxonomy tables
type Kind string

const (
	KindCuisine    Kind = "cuisine"
	KindDiet       Kind = "diet"
	KindIngredient Kind = "ingredient"
	KindOccasion   Kind = "occasion"
)

// AllKinds returns every taxonomy kind in a stable order
func AllKinds() []Kind {
	return []Kind{KindCuisine, KindDiet, KindIngredient, KindOccasion}
}

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindCuisine, KindDiet, KindIngredient, KindOccasion:
		return true
	}
	return false
}

// Plural returns the collection name used for tables and routes
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Label returns the capitalised singular name, e.g. "Cuisine"
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// IDsField returns the recipe request field carrying ids of this kind, e.g. "cuisine_ids"
func (k Kind) IDsField() string {
	return string(k) + "_ids"
}

// Term is a single taxonomy entry
type Term struct {
	shared.BaseEntity
	Kind Kind
	Name string
}

// NewTerm creates a new term of the given kind
func NewTerm(kind Kind, name string) (*Term, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", fmt.Sprintf("Unknown taxonomy kind: %s", kind))
	}
	name = NormalizeName(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	return &Term{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       kind,
		Name:       name,
	}, nil
}

// Rename changes the term's name
func (t *Term) Rename(name string) error {
	name = NormalizeName(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	t.Name = name
	t.Touch()
	return nil
}

// NormalizeName trims surrounding whitespace and converts to Unicode NFC so that
// visually identical names compare equal for uniqueness.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName checks a normalized name. Messages follow the wording API clients already parse.
func ValidateName(name string) error {
	if name == "" {
		return shared.NewValidationError("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return shared.NewValidationError("name",
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxNameLength))
	}
	return nil
}

// DuplicateNameError reports a name already taken within the kind
func DuplicateNameError(kind Kind) error {
	return shared.NewConflictError("name", fmt.Sprintf("%s with this name already exists.", string(kind)))
}
