// Package validation checks product drafts before they are submitted.
package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/iyhunko/product-list-sync/internal/model"
)

// Messages reported for failed field rules.
const (
	MsgNameRequired  = "name required"
	MsgPriceRequired = "price required"
	MsgPriceInvalid  = "enter a valid price"
	MsgImageRequired = "image URL required"
)

// Validate evaluates every field rule of the draft and returns the failures keyed by field.
// The draft is accepted iff the result is empty.
func Validate(draft model.Draft) model.FieldErrors {
	errs := model.FieldErrors{}

	if strings.TrimSpace(draft.Name) == "" {
		errs[model.FieldName] = MsgNameRequired
	}

	price := strings.TrimSpace(draft.Price)
	switch {
	case price == "":
		errs[model.FieldPrice] = MsgPriceRequired
	case !isPositiveNumber(price):
		errs[model.FieldPrice] = MsgPriceInvalid
	}

	if strings.TrimSpace(draft.Image) == "" {
		errs[model.FieldImage] = MsgImageRequired
	}

	return errs
}

// isPositiveNumber accepts decimal notation only; ParseFloat's hex floats (0x1p4) are rejected.
func isPositiveNumber(s string) bool {
	if strings.ContainsAny(s, "xX") {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(v, 0) && !math.IsNaN(v) && v > 0
}
