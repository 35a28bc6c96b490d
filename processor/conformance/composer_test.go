package conformance

import (
	"testing"

	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecificity(t *testing.T) {
	assert.Equal(t, 0, Specificity("**"))
	assert.Greater(t, Specificity("src/features/**"), Specificity("**"))
	assert.Greater(t, Specificity("src/features/legacy/**"), Specificity("src/features/**"))
	assert.Greater(t, Specificity("src/features/*/actions/server.action.ts"), Specificity("src/features/*/actions/*.ts"))
	assert.Greater(t, Specificity("src/features/**/*.ts"), Specificity("src/**/*.ts"))
}

func testRoots(families ...model.Family) []*Root {
	root := &Root{Path: "src/features", families: map[model.Family]bool{}}
	for _, f := range families {
		root.families[f] = true
	}
	return []*Root{root}
}

func TestComposer_Defaults(t *testing.T) {
	cfg := config.DefaultConfig()
	c, err := NewComposer(cfg, testRoots(model.ImportBoundaryFamilies()...))
	require.NoError(t, err)

	p := c.Policy("src/features/comics/actions/server.action.ts")
	assert.Equal(t, model.SeverityError, p[model.FamilyCardinality])
	assert.Equal(t, model.SeverityWarning, p[model.FamilyJSDoc])
	assert.True(t, p.Enabled(model.FamilyStructuralContract))
}

func TestComposer_RootFamilies(t *testing.T) {
	cfg := config.DefaultConfig()
	c, err := NewComposer(cfg, testRoots(model.FamilyLayerOrder, model.FamilyCardinality))
	require.NoError(t, err)

	p := c.Policy("src/features/comics/services/server.service.ts")
	assert.True(t, p.Enabled(model.FamilyLayerOrder))
	assert.False(t, p.Enabled(model.FamilyCrossFeature))
	assert.False(t, p.Enabled(model.FamilyResourceBoundary))
	assert.True(t, p.Enabled(model.FamilyNaming), "non import-boundary families stay on")
}

func TestComposer_MostSpecificWins(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Overrides = []config.OverrideConfig{
		// more specific entry declared first must still win
		{Files: []string{"src/features/legacy/actions/**"}, Family: "structural-contract", Severity: "error"},
		{Files: []string{"src/features/legacy/**"}, Family: "structural-contract", Severity: "off"},
		{Files: []string{"src/features/legacy/**"}, Family: "cross-feature", Severity: "warning"},
		// equal specificity: last declared wins
		{Files: []string{"src/features/legacy/**"}, Family: "cross-feature", Severity: "off"},
	}
	c, err := NewComposer(cfg, testRoots(model.ImportBoundaryFamilies()...))
	require.NoError(t, err)

	actions := c.Policy("src/features/legacy/actions/server.action.ts")
	assert.Equal(t, model.SeverityError, actions[model.FamilyStructuralContract])
	assert.False(t, actions.Enabled(model.FamilyCrossFeature))

	services := c.Policy("src/features/legacy/services/server.service.ts")
	assert.False(t, services.Enabled(model.FamilyStructuralContract))

	other := c.Policy("src/features/comics/actions/server.action.ts")
	assert.Equal(t, model.SeverityError, other[model.FamilyStructuralContract])
}

func TestComposer_UnanchoredOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Overrides = []config.OverrideConfig{
		{Files: []string{"**/*.test.ts"}, Family: "naming", Severity: "off"},
		{Files: []string{"**/actions/*.ts"}, Family: "jsdoc", Severity: "error"},
	}
	c, err := NewComposer(cfg, testRoots(model.ImportBoundaryFamilies()...))
	require.NoError(t, err)

	test := c.Policy("src/features/comics/services/server.service.test.ts")
	assert.False(t, test.Enabled(model.FamilyNaming))
	assert.Equal(t, model.SeverityWarning, test[model.FamilyJSDoc])

	action := c.Policy("src/features/comics/actions/server.action.ts")
	assert.Equal(t, model.SeverityError, action[model.FamilyNaming])
	assert.Equal(t, model.SeverityError, action[model.FamilyJSDoc])
}

func TestComposer_RootToggleBeatsOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Overrides = []config.OverrideConfig{
		{Files: []string{"src/features/legacy/**"}, Family: "cross-feature", Severity: "warning"},
	}
	c, err := NewComposer(cfg, testRoots(model.FamilyLayerOrder))
	require.NoError(t, err)

	p := c.Policy("src/features/legacy/services/server.service.ts")
	assert.False(t, p.Enabled(model.FamilyCrossFeature))
	assert.True(t, p.Enabled(model.FamilyLayerOrder))

	outside := c.Policy("src/components/Card.tsx")
	assert.True(t, outside.Enabled(model.FamilyCrossFeature), "files outside feature roots keep defaults")
}

func TestComposer_InvalidOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Overrides = []config.OverrideConfig{{Files: []string{"src/**"}, Family: "naming", Severity: "fatal"}}
	_, err := NewComposer(cfg, nil)
	assert.Error(t, err)
}

func TestPolicy_Apply(t *testing.T) {
	p := Policy{
		model.FamilyNaming: model.SeverityWarning,
		model.FamilyJSDoc:  model.SeverityOff,
	}
	out := p.Apply([]model.Violation{
		{Rule: "naming/actions", Family: model.FamilyNaming},
		{Rule: "jsdoc/require-jsdoc", Family: model.FamilyJSDoc},
		{Rule: "cardinality/prefix-mismatch", Family: model.FamilyCardinality},
	})
	require.Len(t, out, 1)
	assert.Equal(t, model.SeverityWarning, out[0].Severity)
}
