package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProductID is the server-assigned identifier of a product.
// The remote API may encode it as a string or as a number.
type ProductID string

// String returns the identifier as plain text.
func (id ProductID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both string and numeric identifiers.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	raw, err := stringOrNumber(data)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}
	*id = ProductID(raw)
	return nil
}

// Price is a decimal amount kept in the numeric-looking string form it is transmitted in.
type Price string

// UnmarshalJSON accepts both string and numeric prices.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw, err := stringOrNumber(data)
	if err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	*p = Price(raw)
	return nil
}

// Float parses the price.
func (p Price) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(p)), 64)
}

// Display renders the price rounded to 2 decimals, or "NaN" when it does not parse.
func (p Price) Display() string {
	v, err := p.Float()
	if err != nil || math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Product represents a product owned by the remote product API.
type Product struct {
	ID        ProductID `json:"id"`
	Name      string    `json:"name"`
	Price     Price     `json:"price"`
	Image     string    `json:"image,omitempty"`
	CreatedAt string    `json:"createdAt,omitempty"`
}

// DisplayImage returns the product image, or the placeholder when the product has none.
// The product itself is left untouched.
func (p Product) DisplayImage(placeholder string) string {
	if strings.TrimSpace(p.Image) == "" {
		return placeholder
	}
	return p.Image
}

// CreatePayload is the JSON body sent when creating a product.
type CreatePayload struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image"`
	CreatedAt string `json:"createdAt"`
}

func stringOrNumber(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
