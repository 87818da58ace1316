package models

// Category is one of the fixed expense labels.
type Category string

const (
	CategoryFood          Category = "Food & Dining"
	CategoryTransport     Category = "Transportation"
	CategoryUtilities     Category = "Utilities"
	CategoryHousing       Category = "Housing"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryShopping      Category = "Shopping"
	CategoryPersonalCare  Category = "Personal Care"
	CategoryEducation     Category = "Education"
	CategoryTravel        Category = "Travel"
	CategoryOther         Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryUtilities,
	CategoryHousing,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryShopping,
	CategoryPersonalCare,
	CategoryEducation,
	CategoryTravel,
	CategoryOther,
}

// Valid reports whether c is a known category. Matching is exact.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
