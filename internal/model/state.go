package model

// FormState is the state of the product creation form.
type FormState struct {
	Open   bool        `json:"open"`
	Draft  Draft       `json:"draft"`
	Errors FieldErrors `json:"errors"`
}

// Snapshot is a serializable copy of the product list state handed to subscribers.
type Snapshot struct {
	Products  []Product `json:"products"`
	Loading   bool      `json:"loading"`
	Form      FormState `json:"form"`
	LastError string    `json:"last_error,omitempty"`
	// Version increases on every state change.
	Version uint64 `json:"version"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Products = make([]Product, len(s.Products))
	copy(out.Products, s.Products)
	out.Form.Errors = s.Form.Errors.Clone()
	return out
}
