package models

import "strings"

// Category is one of the closed set of post categories.
type Category string

const (
	CategoryWebDevelopment       Category = "Web Development"
	CategoryGameDevelopment      Category = "Game Development"
	CategoryUIUXDesign           Category = "UI/UX Design"
	CategoryMobileDevelopment    Category = "Mobile Development"
	CategoryDevOpsCloud          Category = "DevOps & Cloud"
	CategoryAIMachineLearning    Category = "AI & Machine Learning"
	CategoryTechTips             Category = "Tech Tips"
	CategoryCareerInsights       Category = "Career Insights"
	CategoryProjectShowcase      Category = "Project Showcase"
	CategoryCybersecurity        Category = "Cybersecurity"
	CategorySoftwareArchitecture Category = "Software Architecture"
)

// DefaultCategory is assigned when neither the frontmatter nor the tags
// identify a category.
const DefaultCategory = CategoryTechTips

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryWebDevelopment,
	CategoryGameDevelopment,
	CategoryUIUXDesign,
	CategoryMobileDevelopment,
	CategoryDevOpsCloud,
	CategoryAIMachineLearning,
	CategoryTechTips,
	CategoryCareerInsights,
	CategoryProjectShowcase,
	CategoryCybersecurity,
	CategorySoftwareArchitecture,
}

// ParseCategory matches s case-insensitively against the enumeration and
// returns the canonical value.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is exactly one of the canonical categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
