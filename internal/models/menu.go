package models

// MenuItem is one orderable product under a category
type MenuItem struct {
	Name string      `json:"name"`
	Code ProductCode `json:"code"`
}

// Category groups menu items under a display name. Item names are unique within a category.
type Category struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// Put adds an item or replaces the code of an existing item with the same name.
func (c *Category) Put(name string, code ProductCode) {
	for i := range c.Items {
		if c.Items[i].Name == name {
			c.Items[i].Code = code
			return
		}
	}
	c.Items = append(c.Items, MenuItem{Name: name, Code: code})
}

// Menu is a store menu in category order
type Menu struct {
	Categories []Category `json:"categories"`
}

// Category returns the named category, creating it at the end if missing.
func (m *Menu) Category(name string) *Category {
	for i := range m.Categories {
		if m.Categories[i].Name == name {
			return &m.Categories[i]
		}
	}
	m.Categories = append(m.Categories, Category{Name: name})
	return &m.Categories[len(m.Categories)-1]
}

// Contains reports whether any category lists the code.
func (m *Menu) Contains(code ProductCode) bool {
	for _, category := range m.Categories {
		for _, item := range category.Items {
			if item.Code == code {
				return true
			}
		}
	}
	return false
}

// Offer is a promotion available to the signed-in customer
type Offer struct {
	ID          int          `json:"Id"`
	Name        string       `json:"Name"`
	ProductSets []ProductSet `json:"ProductSets"`
}

// ProductSet is one slot of an offer that must be filled with exactly one product
type ProductSet struct {
	AnyProduct bool          `json:"AnyProduct"`
	Products   []ProductCode `json:"Products"`
	Alias      string        `json:"Alias"`
	Action     *OfferAction  `json:"Action"`
}

// OfferAction carries the discount tag of a product set
type OfferAction struct {
	DiscountType int `json:"DiscountType"`
}
