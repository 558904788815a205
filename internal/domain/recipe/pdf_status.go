package recipe

// PDFStatus is the state of a recipe's PDF attachment job
type PDFStatus string

const (
	// PDFStatusNone means no PDF was ever requested for the recipe
	PDFStatusNone      PDFStatus = ""
	PDFStatusPending   PDFStatus = "pending"
	PDFStatusSucceeded PDFStatus = "succeeded"
	PDFStatusFailed    PDFStatus = "failed"
)

// IsValid checks if the PDFStatus is a valid value
func (s PDFStatus) IsValid() bool {
	switch s {
	case PDFStatusNone, PDFStatusPending, PDFStatusSucceeded, PDFStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PDFStatus
func (s PDFStatus) String() string {
	return string(s)
}

// IsTerminal returns true when the last requested job has finished
func (s PDFStatus) IsTerminal() bool {
	return s == PDFStatusSucceeded || s == PDFStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status.
// A new request may always restart the job, including one already pending.
func (s PDFStatus) CanTransitionTo(target PDFStatus) bool {
	switch target {
	case PDFStatusPending:
		return s.IsValid()
	case PDFStatusSucceeded, PDFStatusFailed:
		return s == PDFStatusPending
	}
	return false
}
