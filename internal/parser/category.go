package parser

import (
	"strings"

	"github.com/starford/folio/internal/models"
)

// tagCategories maps lowercase tags to categories. It is the single source
// for category inference; the first tag with an entry wins.
var tagCategories = map[string]models.Category{
	"react":      models.CategoryWebDevelopment,
	"typescript": models.CategoryWebDevelopment,
	"javascript": models.CategoryWebDevelopment,
	"node.js":    models.CategoryWebDevelopment,
	"nodejs":     models.CategoryWebDevelopment,
	"nextjs":     models.CategoryWebDevelopment,
	"vue":        models.CategoryWebDevelopment,
	"css":        models.CategoryWebDevelopment,
	"html":       models.CategoryWebDevelopment,
	"web":        models.CategoryWebDevelopment,
	"frontend":   models.CategoryWebDevelopment,
	"backend":    models.CategoryWebDevelopment,
	"api":        models.CategoryWebDevelopment,
	"database":   models.CategoryWebDevelopment,

	"unity":    models.CategoryGameDevelopment,
	"unreal":   models.CategoryGameDevelopment,
	"godot":    models.CategoryGameDevelopment,
	"c#":       models.CategoryGameDevelopment,
	"gamedev":  models.CategoryGameDevelopment,
	"game-dev": models.CategoryGameDevelopment,
	"games":    models.CategoryGameDevelopment,

	"ui":            models.CategoryUIUXDesign,
	"ux":            models.CategoryUIUXDesign,
	"design":        models.CategoryUIUXDesign,
	"figma":         models.CategoryUIUXDesign,
	"accessibility": models.CategoryUIUXDesign,

	"mobile":       models.CategoryMobileDevelopment,
	"ios":          models.CategoryMobileDevelopment,
	"android":      models.CategoryMobileDevelopment,
	"flutter":      models.CategoryMobileDevelopment,
	"react-native": models.CategoryMobileDevelopment,
	"swift":        models.CategoryMobileDevelopment,
	"kotlin":       models.CategoryMobileDevelopment,

	"aws":        models.CategoryDevOpsCloud,
	"docker":     models.CategoryDevOpsCloud,
	"kubernetes": models.CategoryDevOpsCloud,
	"ci/cd":      models.CategoryDevOpsCloud,
	"devops":     models.CategoryDevOpsCloud,
	"cloud":      models.CategoryDevOpsCloud,
	"terraform":  models.CategoryDevOpsCloud,

	"ai":               models.CategoryAIMachineLearning,
	"ml":               models.CategoryAIMachineLearning,
	"machine-learning": models.CategoryAIMachineLearning,
	"python":           models.CategoryAIMachineLearning,
	"tensorflow":       models.CategoryAIMachineLearning,
	"pytorch":          models.CategoryAIMachineLearning,
	"llm":              models.CategoryAIMachineLearning,

	"career":    models.CategoryCareerInsights,
	"interview": models.CategoryCareerInsights,
	"jobs":      models.CategoryCareerInsights,

	"portfolio": models.CategoryProjectShowcase,
	"showcase":  models.CategoryProjectShowcase,
	"project":   models.CategoryProjectShowcase,

	"security":      models.CategoryCybersecurity,
	"cybersecurity": models.CategoryCybersecurity,
	"infosec":       models.CategoryCybersecurity,

	"architecture":    models.CategorySoftwareArchitecture,
	"design patterns": models.CategorySoftwareArchitecture,
	"design-patterns": models.CategorySoftwareArchitecture,
	"microservices":   models.CategorySoftwareArchitecture,
}

// InferCategory scans tags in order and returns the category of the first
// one found in the lookup table, or models.DefaultCategory.
func InferCategory(tags []string) models.Category {
	for _, tag := range tags {
		if c, ok := tagCategories[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return c
		}
	}
	return models.DefaultCategory
}
