package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIcon_UnknownIsNone(t *testing.T) {
	assert.Equal(t, domain.IconMonitor, domain.ParseIcon("Monitor"))
	assert.Equal(t, domain.IconNone, domain.ParseIcon("monitor"), "names are case sensitive")
	assert.Equal(t, domain.IconNone, domain.ParseIcon("Rocketship"))
	assert.Equal(t, domain.IconNone, domain.ParseIcon(""))
}

func TestIconOr_IsTotal(t *testing.T) {
	assert.Equal(t, domain.DefaultCategoryIcon, domain.ParseIcon("nope").Or(domain.DefaultCategoryIcon))
	assert.Equal(t, domain.DefaultFeatureIcon, domain.Icon(250).Or(domain.DefaultFeatureIcon))
	assert.Equal(t, domain.IconZap, domain.IconZap.Or(domain.DefaultFeatureIcon))
}

func TestCategory_DisplayIcon(t *testing.T) {
	assert.Equal(t, domain.IconMonitor, domain.Category{}.DisplayIcon())
	assert.Equal(t, domain.IconCode, domain.Category{Icon: domain.IconCode}.DisplayIcon())
}

func TestResolveIcons(t *testing.T) {
	categories := []domain.Category{{ID: "a"}, {ID: "b", Icon: domain.IconCode}}
	domain.ResolveCategoryIcons(categories)
	assert.Equal(t, domain.IconMonitor, categories[0].Icon)
	assert.Equal(t, domain.IconCode, categories[1].Icon)

	products := []domain.Product{{
		Features: []domain.Feature{{Title: "unknown"}, {Icon: domain.IconGem, Title: "kept"}},
		Category: &domain.Category{ID: "a"},
	}, {}}
	domain.ResolveProductIcons(products)
	assert.Equal(t, domain.IconShieldCheck, products[0].Features[0].Icon)
	assert.Equal(t, domain.IconGem, products[0].Features[1].Icon)
	assert.Equal(t, domain.IconMonitor, products[0].Category.Icon)

	b, err := json.Marshal(products[0].Features[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"icon":"ShieldCheck"`)
}

func TestIcon_JSON(t *testing.T) {
	var f domain.Feature
	require.NoError(t, json.Unmarshal([]byte(`{"icon":"Zap","title":"Fast"}`), &f))
	assert.Equal(t, domain.IconZap, f.Icon)

	require.NoError(t, json.Unmarshal([]byte(`{"icon":"Unknown","title":"x"}`), &f))
	assert.Equal(t, domain.IconNone, f.Icon)

	b, err := json.Marshal(domain.Feature{Icon: domain.IconGem, Title: "Premium"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"icon":"Gem"`)
}

func TestSearchIcons(t *testing.T) {
	all := domain.SearchIcons(domain.IconSetFeature, "")
	assert.Contains(t, all, domain.IconShieldCheck)
	assert.NotContains(t, all, domain.IconMonitor)

	assert.Equal(t, []domain.Icon{domain.IconShieldCheck}, domain.SearchIcons(domain.IconSetCategory, "SHIELD"))
	assert.Empty(t, domain.SearchIcons(domain.IconSetCategory, "zzz"))
}

func TestIcon_InSet(t *testing.T) {
	assert.True(t, domain.IconTerminal.InSet(domain.IconSetCategory))
	assert.False(t, domain.IconTerminal.InSet(domain.IconSetFeature))
	assert.True(t, domain.IconGem.InSet(domain.IconSetFeature))
}
