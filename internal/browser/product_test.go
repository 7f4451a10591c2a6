package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFromSlug(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"magic-the-gathering-commander", "Magic: The Gathering"},
		{"pokemon-sv-scarlet-violet", "Pokemon"},
		{"yugioh-structure-deck", "Yu-Gi-Oh!"},
		{"lorcana-the-first-chapter", "Lorcana"},
		{"star-wars-unlimited", "Star Wars"},
		{"digimon-bt01", "Digimon"},
		{"flesh", "Flesh"},
		{"-promo", ""},
		{"--", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categoryFromSlug(tt.slug), tt.slug)
	}
}

func TestManageLinkPattern(t *testing.T) {
	m := manageLinkPattern.FindStringSubmatch("/admin/product/manage/614199")
	assert.NotNil(t, m)
	assert.Equal(t, "614199", m[1])

	assert.Nil(t, manageLinkPattern.FindStringSubmatch("/admin/product/catalog"))
}
