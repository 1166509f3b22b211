package services

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultCategory is returned when no keyword matches a brief.
const DefaultCategory = "General Requirements"

// AssetCategory maps a category label to the brief keywords that imply it.
type AssetCategory struct {
	Label    string
	Keywords []string
}

// AssetCategories is the fixed keyword table the brief classifier matches
// against. Order matters: result categories come back in table order.
var AssetCategories = []AssetCategory{
	{Label: "Printing", Keywords: []string{"banner", "print", "flyer", "poster", "signage", "brochure", "sticker"}},
	{Label: "Catering", Keywords: []string{"catering", "food", "beverage", "drinks", "buffet", "snacks"}},
	{Label: "Design", Keywords: []string{"photographer", "photography", "design", "logo", "branding", "video", "graphic"}},
	{Label: "Audio/Visual", Keywords: []string{"sound", "stage", "lighting", "projector", "screen", "microphone", "speakers"}},
	{Label: "Logistics", Keywords: []string{"transport", "delivery", "shipping", "venue", "setup", "storage"}},
	{Label: "Furniture", Keywords: []string{"furniture", "seating", "chairs", "tables", "booth", "tent"}},
}

// ClassifyBrief returns the ordered set of category labels whose keyword
// list has at least one case-insensitive substring match in the brief.
// An empty or unrecognized brief yields the default category alone.
func ClassifyBrief(brief string) []string {
	folded := cases.Fold().String(brief)

	var categories []string
	for _, category := range AssetCategories {
		for _, keyword := range category.Keywords {
			if strings.Contains(folded, keyword) {
				categories = append(categories, category.Label)
				break
			}
		}
	}

	if len(categories) == 0 {
		return []string{DefaultCategory}
	}
	return categories
}
