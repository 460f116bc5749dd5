package linker

import (
	"strings"

	"github.com/zero-day-ai/kleegraph/config"
)

// Role classifies a Function by name.
type Role string

const (
	RoleVulnerable Role = "vulnerable"
	RoleEntry      Role = "entry"
	RoleHelper     Role = "helper"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Rules holds the tokens used by InferRole.
type Rules struct {
	// Marker is matched case-insensitively anywhere in the name.
	Marker string

	// Entry is compared with the whole name.
	Entry string
}

// DefaultRules returns the rules for a stock KLEE harness.
func DefaultRules() Rules {
	return Rules{
		Marker: config.DefaultVulnerableMarker,
		Entry:  config.DefaultEntrySymbol,
	}
}

// RulesFromConfig builds Rules from the linker section of a configuration.
func RulesFromConfig(cfg config.LinkerConfig) Rules {
	return Rules{
		Marker: cfg.GetVulnerableMarker(),
		Entry:  cfg.GetEntrySymbol(),
	}
}

// InferRole assigns a role to a function name. The marker check runs first,
// so an entry symbol containing the marker is vulnerable.
func InferRole(name string, rules Rules) Role {
	if rules.Marker != "" && strings.Contains(strings.ToLower(name), strings.ToLower(rules.Marker)) {
		return RoleVulnerable
	}
	if rules.Entry != "" && name == rules.Entry {
		return RoleEntry
	}
	return RoleHelper
}
