package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProductCode is an upstream product identifier. The API sends codes both as JSON
// numbers and as strings, and promotional variants use a composite "base-suffix" form.
type ProductCode string

func (c *ProductCode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("product code: %w", err)
		}
		*c = ProductCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product code: %w", err)
	}
	*c = ProductCode(n.String())
	return nil
}

// MarshalJSON writes numeric codes as bare numbers, which is what the order endpoints expect.
func (c ProductCode) MarshalJSON() ([]byte, error) {
	if c.IsNumeric() {
		return []byte(c), nil
	}
	return json.Marshal(string(c))
}

// IsNumeric reports whether the code is a plain integer without leading zeros.
func (c ProductCode) IsNumeric() bool {
	s := string(c)
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Base splits a composite promotional code ("123-456") and returns its base ("123").
func (c ProductCode) Base() (ProductCode, bool) {
	base, _, found := strings.Cut(string(c), "-")
	if !found || base == "" {
		return "", false
	}
	return ProductCode(base), true
}

func (c ProductCode) String() string {
	return string(c)
}
