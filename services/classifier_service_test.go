package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBrief_MultipleCategories(t *testing.T) {
	categories := ClassifyBrief("We need a large banner at the entrance and catering for 150 people.")

	assert.Contains(t, categories, "Printing")
	assert.Contains(t, categories, "Catering")
}

func TestClassifyBrief_OrderFollowsTable(t *testing.T) {
	categories := ClassifyBrief("Need banners and a photographer")

	assert.Equal(t, []string{"Printing", "Design"}, categories)
}

func TestClassifyBrief_CaseInsensitive(t *testing.T) {
	categories := ClassifyBrief("CATERING and BUFFET required")

	assert.Equal(t, []string{"Catering"}, categories)
}

func TestClassifyBrief_NoMatchReturnsDefault(t *testing.T) {
	categories := ClassifyBrief("Something entirely unrelated to any known service")

	assert.Equal(t, []string{DefaultCategory}, categories)
}

func TestClassifyBrief_EmptyBrief(t *testing.T) {
	assert.Equal(t, []string{DefaultCategory}, ClassifyBrief(""))
}

func TestClassifyBrief_OneLabelPerCategory(t *testing.T) {
	// Several keywords of the same category must not duplicate the label.
	categories := ClassifyBrief("posters, flyers and more banners")

	assert.Equal(t, []string{"Printing"}, categories)
}
