package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackval/internal/config"
)

func TestProbe_AppliesToClass(t *testing.T) {
	universal := Probe{Name: "u", Category: CategoryConnectivity}
	deployedOnly := Probe{
		Name:      "d",
		Category:  CategoryConfigShape,
		AppliesTo: []config.EnvironmentClass{config.EnvStaging, config.EnvProduction},
	}
	exposure := Probe{
		Name:     "e",
		Category: CategoryExposure,
		ExpectReachable: map[config.EnvironmentClass]bool{
			config.EnvLocal:   true,
			config.EnvStaging: false,
		},
	}

	tests := []struct {
		name  string
		probe Probe
		class config.EnvironmentClass
		want  bool
	}{
		{"universal applies to local", universal, config.EnvLocal, true},
		{"universal applies to production", universal, config.EnvProduction, true},
		{"scoped excludes local", deployedOnly, config.EnvLocal, false},
		{"scoped includes staging", deployedOnly, config.EnvStaging, true},
		{"exposure scoped by polarity map", exposure, config.EnvLocal, true},
		{"exposure without entry does not apply", exposure, config.EnvProduction, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.probe.AppliesToClass(tt.class))
		})
	}
}

func TestFilter_PreservesDeclarationOrder(t *testing.T) {
	probes := []Probe{
		{Name: "first", Category: CategoryConnectivity},
		{Name: "second", Category: CategoryConfigShape, AppliesTo: []config.EnvironmentClass{config.EnvLocal}},
		{Name: "third", Category: CategoryConnectivity},
	}

	filtered := Filter(probes, config.EnvLocal)
	require.Len(t, filtered, 3)
	assert.Equal(t, "first", filtered[0].Name)
	assert.Equal(t, "second", filtered[1].Name)
	assert.Equal(t, "third", filtered[2].Name)

	filtered = Filter(probes, config.EnvStaging)
	require.Len(t, filtered, 2)
	assert.Equal(t, "first", filtered[0].Name)
	assert.Equal(t, "third", filtered[1].Name)
}

func TestDefaultSet_ExposurePolarityOppositeBetweenClasses(t *testing.T) {
	for _, p := range DefaultSet() {
		if p.Category != CategoryExposure {
			continue
		}
		t.Run(p.Name, func(t *testing.T) {
			require.Contains(t, p.ExpectReachable, config.EnvLocal)
			require.Contains(t, p.ExpectReachable, config.EnvStaging)
			require.Contains(t, p.ExpectReachable, config.EnvProduction)
			assert.True(t, p.ExpectReachable[config.EnvLocal])
			assert.False(t, p.ExpectReachable[config.EnvStaging])
			assert.False(t, p.ExpectReachable[config.EnvProduction])
		})
	}
}

func TestDefaultSet_DebugProbesSplitByPosture(t *testing.T) {
	byName := map[string]Probe{}
	for _, p := range DefaultSet() {
		byName[p.Name] = p
	}

	local := byName["debug-enabled-locally"]
	assert.True(t, local.AppliesToClass(config.EnvLocal))
	assert.False(t, local.AppliesToClass(config.EnvProduction))

	deployed := byName["debug-disabled-when-deployed"]
	assert.False(t, deployed.AppliesToClass(config.EnvLocal))
	assert.True(t, deployed.AppliesToClass(config.EnvStaging))
	assert.True(t, deployed.AppliesToClass(config.EnvProduction))
}
