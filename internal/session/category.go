package session

// Category is the kind of work a session performed.
type Category string

const (
	CategoryBugFix        Category = "bug-fix"
	CategoryFeature       Category = "feature"
	CategoryRefactor      Category = "refactor"
	CategoryInvestigation Category = "investigation"
	CategoryTesting       Category = "testing"
	CategoryDocs          Category = "docs"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBugFix,
	CategoryFeature,
	CategoryRefactor,
	CategoryInvestigation,
	CategoryTesting,
	CategoryDocs,
	CategoryOther,
}

// ParseCategory maps s onto the closed category set. Unknown or empty values
// become CategoryOther.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if string(c) == s {
			return c
		}
	}
	return CategoryOther
}
