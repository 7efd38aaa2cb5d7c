// GlowDesk | 2026
// entity_test.go

package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glowdesk/api/internal/tenant"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "GlowDesk", "glowdesk"},
		{"spaces to hyphens", "Bella Hair Studio", "bella-hair-studio"},
		{"trims surrounding space", "  Salon Uno  ", "salon-uno"},
		{"strips punctuation", "Kate's Nails & Spa", "kates-nails--spa"},
		{"keeps digits and underscores", "studio_54", "studio_54"},
		{"strips accents entirely", "Céline", "cline"},
		{"empty input", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tenant.Slugify(tt.in))
		})
	}
}

func TestValidPlan(t *testing.T) {
	assert.True(t, tenant.ValidPlan(tenant.PlanFree))
	assert.True(t, tenant.ValidPlan(tenant.PlanStandard))
	assert.True(t, tenant.ValidPlan(tenant.PlanPremium))
	assert.False(t, tenant.ValidPlan("enterprise"))
	assert.False(t, tenant.ValidPlan(""))
}
