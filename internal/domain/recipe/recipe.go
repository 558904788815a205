// Package recipe contains the Recipe aggregate and the state of its PDF attachment job.
package recipe

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// Recipe is a cookbook entry. Its attached PDF is produced out of band by a job
// identified by PDFJobID; only that job may attach a file.
type Recipe struct {
	shared.BaseAggregateRoot
	Name      string
	URL       string
	Note      string
	FileKey   string
	PDFStatus PDFStatus
	PDFError  string
	PDFJobID  uuid.UUID

	associations map[taxonomy.Kind][]taxonomy.Term
	pdfRequested bool
}

// NewRecipe creates a new recipe with the given name
func NewRecipe(name string) (*Recipe, error) {
	name = taxonomy.NormalizeName(name)
	if err := taxonomy.ValidateName(name); err != nil {
		return nil, err
	}

	return &Recipe{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		associations:      make(map[taxonomy.Kind][]taxonomy.Term),
	}, nil
}

// Rename changes the recipe's name
func (r *Recipe) Rename(name string) error {
	name = taxonomy.NormalizeName(name)
	if err := taxonomy.ValidateName(name); err != nil {
		return err
	}
	r.Name = name
	r.Touch()
	return nil
}

// SetNote replaces the free-text note
func (r *Recipe) SetNote(note string) {
	r.Note = note
	r.Touch()
}

// RequestPDF records a new origin URL and starts a fresh attachment job.
// Any attached file is detached; its key is returned so the caller can delete
// it from storage once the change is committed.
func (r *Recipe) RequestPDF(rawURL string) (staleFileKey string, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	if !r.PDFStatus.CanTransitionTo(PDFStatusPending) {
		return "", shared.NewDomainError("INVALID_STATE",
			"Cannot request a PDF from status: "+r.PDFStatus.String())
	}

	staleFileKey = r.FileKey
	r.URL = rawURL
	r.FileKey = ""
	r.PDFStatus = PDFStatusPending
	r.PDFError = ""
	r.PDFJobID = uuid.New()
	r.pdfRequested = true
	r.Touch()

	return staleFileKey, nil
}

// AttachPDF completes the job identified by jobID with the stored file key
func (r *Recipe) AttachPDF(jobID uuid.UUID, fileKey string) error {
	if err := r.checkJob(jobID, PDFStatusSucceeded); err != nil {
		return err
	}
	if fileKey == "" {
		return shared.NewDomainError("INVALID_FILE", "File key cannot be empty")
	}

	r.FileKey = fileKey
	r.PDFStatus = PDFStatusSucceeded
	r.PDFError = ""
	r.Touch()
	return nil
}

// FailPDF records the failure of the job identified by jobID
func (r *Recipe) FailPDF(jobID uuid.UUID, reason string) error {
	if err := r.checkJob(jobID, PDFStatusFailed); err != nil {
		return err
	}

	r.PDFStatus = PDFStatusFailed
	r.PDFError = reason
	r.Touch()
	return nil
}

// IsCurrentJob reports whether jobID is still the job allowed to attach a file
func (r *Recipe) IsCurrentJob(jobID uuid.UUID) bool {
	return jobID != uuid.Nil && r.PDFJobID == jobID
}

// HasFile returns true if a PDF is attached
func (r *Recipe) HasFile() bool {
	return r.FileKey != ""
}

// ReplaceAssociations fully replaces the association set of a taxonomy kind
func (r *Recipe) ReplaceAssociations(kind taxonomy.Kind, terms []taxonomy.Term) {
	if r.associations == nil {
		r.associations = make(map[taxonomy.Kind][]taxonomy.Term)
	}
	r.associations[kind] = append([]taxonomy.Term(nil), terms...)
	r.Touch()
}

// SetAssociations loads an association set without marking the recipe as changed.
// Repositories use it when rehydrating.
func (r *Recipe) SetAssociations(kind taxonomy.Kind, terms []taxonomy.Term) {
	if r.associations == nil {
		r.associations = make(map[taxonomy.Kind][]taxonomy.Term)
	}
	r.associations[kind] = terms
}

// Associations returns the terms of a kind linked to the recipe, never nil
func (r *Recipe) Associations(kind taxonomy.Kind) []taxonomy.Term {
	if terms, ok := r.associations[kind]; ok && terms != nil {
		return terms
	}
	return []taxonomy.Term{}
}

// AssociationIDs returns the ids of the terms of a kind linked to the recipe
func (r *Recipe) AssociationIDs(kind taxonomy.Kind) []uint {
	terms := r.Associations(kind)
	ids := make([]uint, 0, len(terms))
	for _, t := range terms {
		ids = append(ids, t.ID)
	}
	return ids
}

// MarkDeleted raises the deletion event. Call after the row is removed.
func (r *Recipe) MarkDeleted() {
	r.Record(NewRecipeDeletedEvent(r))
}

// ReleaseEvents returns pending domain events and clears them.
// Events referencing the recipe id are built here because a new recipe
// only has an id after its first save.
func (r *Recipe) ReleaseEvents() []shared.DomainEvent {
	if r.pdfRequested && r.ID != 0 {
		r.Record(NewRecipePDFRequestedEvent(r))
		r.pdfRequested = false
	}
	return r.PullEvents()
}

func (r *Recipe) checkJob(jobID uuid.UUID, target PDFStatus) error {
	if !r.IsCurrentJob(jobID) {
		return ErrStaleJob
	}
	if !r.PDFStatus.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move PDF status from %q to %q", r.PDFStatus, target))
	}
	return nil
}

// ErrStaleJob is returned when a job result arrives after a newer job was requested
var ErrStaleJob = shared.NewDomainError("CONCURRENCY_CONFLICT", "PDF job was superseded by a newer request")

// ValidateURL accepts absolute http and https URLs
func ValidateURL(raw string) error {
	if raw == "" {
		return shared.NewValidationError("url", "This field may not be blank.")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return shared.NewValidationError("url", "Enter a valid URL.")
	}
	return nil
}

// DuplicateNameError reports a recipe name already in use
func DuplicateNameError() error {
	return shared.NewConflictError("name", "recipe with this name already exists.")
}
