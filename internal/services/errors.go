package services

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching across the service layer.
var (
	// ErrNotFound is the base of every NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrEmptyInvoice is returned when document generation is attempted on
	// an invoice with no live line items.
	ErrEmptyInvoice = errors.New("invoice has no line items")

	// ErrValidation is the base of every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrTransientStore marks connectivity or transaction failures. It is
	// the only category a caller may retry; the services themselves never
	// retry, to avoid double-invoicing.
	ErrTransientStore = errors.New("transient store failure")
)

// NotFoundError reports that a referenced entity does not exist or is
// soft-deleted at operation time.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// EmptyInvoiceError reports document generation on an invoice with zero
// line items.
type EmptyInvoiceError struct {
	InvoiceID uint
}

func (e *EmptyInvoiceError) Error() string {
	return fmt.Sprintf("invoice %d has no line items", e.InvoiceID)
}

func (e *EmptyInvoiceError) Is(target error) bool { return target == ErrEmptyInvoice }

// ValidationError reports malformed input such as negative hours or a
// missing required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransientStoreError wraps a store failure that a caller may retry.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

func (e *TransientStoreError) Is(target error) bool { return target == ErrTransientStore }
