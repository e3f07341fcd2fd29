package domain_test

import (
	"testing"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Ferramentas de Design": "ferramentas-de-design",
		"Educação & Cursos":     "educacao-cursos",
		"  IA  Generativa  ":    "ia-generativa",
		"C++ / Go":              "c-go",
		"---":                   "",
		"Já 2024!":              "ja-2024",
	}
	for in, want := range tests {
		assert.Equal(t, want, domain.Slugify(in), "input %q", in)
	}
}

func TestIsValidSlug(t *testing.T) {
	for _, ok := range []string{"tools", "ai-tools", "web3", "a-b-c"} {
		assert.True(t, domain.IsValidSlug(ok), ok)
	}
	for _, bad := range []string{"", "-tools", "tools-", "ai--tools", "Tools", "ai tools", "ação"} {
		assert.False(t, domain.IsValidSlug(bad), bad)
	}
}
