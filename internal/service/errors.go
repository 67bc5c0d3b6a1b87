package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iyhunko/product-list-sync/internal/model"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("product draft is invalid")

// ValidationError is returned when a draft fails one or more field rules.
// Nothing was sent to the product API.
type ValidationError struct {
	Fields model.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ResyncError is returned when a mutation succeeded remotely but the reload that follows failed.
// The collection keeps its previous state until the next successful reload.
type ResyncError struct {
	Op  string
	Err error
}

func (e *ResyncError) Error() string {
	return fmt.Sprintf("reloading products after %s: %v", e.Op, e.Err)
}

func (e *ResyncError) Unwrap() error {
	return e.Err
}
