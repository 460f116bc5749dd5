package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zero-day-ai/kleegraph/config"
)

func TestInferRole(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		want Role
	}{
		{name: "vulnerable_set", want: RoleVulnerable},
		{name: "VULNERABLE_copy", want: RoleVulnerable},
		{name: "parse_Vulnerable", want: RoleVulnerable},
		{name: "main", want: RoleEntry},
		{name: "Main", want: RoleHelper},
		{name: "main_loop", want: RoleHelper},
		{name: "memcpy", want: RoleHelper},
		{name: "", want: RoleHelper},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferRole(tt.name, rules))
		})
	}
}

func TestInferRole_CustomRules(t *testing.T) {
	rules := RulesFromConfig(config.LinkerConfig{VulnerableMarker: "Sink", EntrySymbol: "__user_main"})

	assert.Equal(t, RoleVulnerable, InferRole("write_sink", rules))
	assert.Equal(t, RoleEntry, InferRole("__user_main", rules))
	assert.Equal(t, RoleHelper, InferRole("main", rules))
	assert.Equal(t, RoleHelper, InferRole("vulnerable_set", rules))
}

func TestInferRole_MarkerBeatsEntry(t *testing.T) {
	rules := Rules{Marker: "main", Entry: "main"}
	assert.Equal(t, RoleVulnerable, InferRole("main", rules))
}

func TestRulesFromConfig_Defaults(t *testing.T) {
	assert.Equal(t, DefaultRules(), RulesFromConfig(config.LinkerConfig{}))
}
