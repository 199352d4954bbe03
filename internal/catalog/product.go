package catalog

// Categories is the closed set of product categories carried by the catalog.
var Categories = []string{"Earrings", "Bracelets", "Rings", "Necklaces", "Watches"}

// Product is an immutable catalog entry. Price is the formatted display
// string; PriceNumeric is the same amount as a plain integer and is the only
// field money math is done with.
type Product struct {
	ID           int    `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Category     string `yaml:"category" json:"category"`
	Price        string `yaml:"price" json:"price"`
	PriceNumeric int64  `yaml:"priceNumeric" json:"priceNumeric"`
	Image        string `yaml:"image" json:"image"`
	HoverImage   string `yaml:"hoverImage" json:"hoverImage"`
	IsNew        bool   `yaml:"isNew" json:"isNew,omitempty"`
	Material     string `yaml:"material" json:"material,omitempty"`
	Dimensions   string `yaml:"dimensions" json:"dimensions,omitempty"`
	Weight       string `yaml:"weight" json:"weight,omitempty"`
	EditorNotes  string `yaml:"editorNotes" json:"editorNotes,omitempty"`
}
