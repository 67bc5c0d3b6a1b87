package model

// Field names used as keys of FieldErrors.
const (
	FieldName  = "name"
	FieldPrice = "price"
	FieldImage = "image"
)

// Draft holds the raw, unvalidated input of the product creation form.
type Draft struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image"`
}

// FieldErrors maps a field name to a human-readable validation message.
type FieldErrors map[string]string

// Empty reports whether there are no validation errors.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Clone returns an independent copy.
func (fe FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}
