package enums

import "fmt"

// ProductCategory is the closed set of weapon classes in the catalog.
type ProductCategory string

const (
	ProductCategoryPistol    ProductCategory = "pistol"
	ProductCategoryExplosive ProductCategory = "explosive"
	ProductCategoryMelee     ProductCategory = "melee"
	ProductCategoryBlade     ProductCategory = "blade"
	ProductCategoryLauncher  ProductCategory = "launcher"
	ProductCategoryCrossbow  ProductCategory = "crossbow"
)

var validProductCategories = []ProductCategory{
	ProductCategoryPistol,
	ProductCategoryExplosive,
	ProductCategoryMelee,
	ProductCategoryBlade,
	ProductCategoryLauncher,
	ProductCategoryCrossbow,
}

// IsValid reports whether the value matches the canonical category enum.
func (p ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCategory converts a raw string to ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductCategories returns the full closed enumeration.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}
