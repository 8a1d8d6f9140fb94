package faults

import "fmt"

// NotFoundError covers entities that are absent, not owned by the caller, or
// already processed by a concurrent writer (a guarded UPDATE that hit zero rows).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found or already processed", e.Entity)
	}
	return fmt.Sprintf("%s %s not found or already processed", e.Entity, e.ID)
}

// AccessDeniedError signals an ownership or role violation.
type AccessDeniedError struct {
	UserID string
	Reason string
}

func (e *AccessDeniedError) Error() string {
	if e.Reason == "" {
		return "access denied"
	}
	return "access denied: " + e.Reason
}

// LockedStateError signals an operation that is illegal for the transaction's
// current lifecycle status.
type LockedStateError struct {
	Status string
	Op     string
}

func (e *LockedStateError) Error() string {
	return fmt.Sprintf("operation %s not allowed in status %s", e.Op, e.Status)
}

// ValidationError covers allowlist violations, expired deadlines and malformed
// patches or item payloads.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ExtractionFailure signals unsupported input or an extraction engine error.
type ExtractionFailure struct {
	Mode   string
	Reason string
}

func (e *ExtractionFailure) Error() string {
	if e.Mode == "" {
		return "text extraction failed: " + e.Reason
	}
	return fmt.Sprintf("text extraction failed (mode %s): %s", e.Mode, e.Reason)
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func AccessDenied(userID, reason string) error {
	return &AccessDeniedError{UserID: userID, Reason: reason}
}

func Locked(op, status string) error {
	return &LockedStateError{Op: op, Status: status}
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Extraction(mode, reason string) error {
	return &ExtractionFailure{Mode: mode, Reason: reason}
}
