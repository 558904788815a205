package shared

import "time"

// BaseEntity holds the identity and timestamps of a stored row.
// ID stays zero until the repository saves it for the first time.
type BaseEntity struct {
	ID        uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps both timestamps with the current time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{CreatedAt: now, UpdatedAt: now}
}

// IsNew reports whether the row was never saved
func (e *BaseEntity) IsNew() bool {
	return e.ID == 0
}

// Touch records a modification
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
