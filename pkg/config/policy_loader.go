package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nudgekit/core/pkg/nudge"
	"gopkg.in/yaml.v3"
)

// PolicyProfile is a named nudge policy loaded from YAML. Profiles let
// operators tune thresholds per deployment without rebuilding.
type PolicyProfile struct {
	Name       string           `yaml:"name" json:"name"`
	Code       string           `yaml:"code" json:"code"`
	Thresholds ThresholdsConfig `yaml:"thresholds" json:"thresholds"`
}

// ThresholdsConfig holds the tunable decision parameters.
// A zero or missing value disables the corresponding rule.
type ThresholdsConfig struct {
	BlockTotalCents      int64 `yaml:"block_total_cents" json:"block_total_cents"`
	AlternativeLineCents int64 `yaml:"alternative_line_cents" json:"alternative_line_cents"`
	GentleItemCount      int64 `yaml:"gentle_item_count" json:"gentle_item_count"`
	BlockSeconds         int   `yaml:"block_seconds" json:"block_seconds"`
}

// EngineThresholds converts the profile parameters for the decision
// engine.
func (p *PolicyProfile) EngineThresholds() nudge.Thresholds {
	return nudge.Thresholds{
		BlockTotalCents:      p.Thresholds.BlockTotalCents,
		AlternativeLineCents: p.Thresholds.AlternativeLineCents,
		GentleItemCount:      p.Thresholds.GentleItemCount,
		BlockSeconds:         p.Thresholds.BlockSeconds,
	}
}

// LoadPolicy loads a policy YAML by code. It searches the policies
// directory for policy_<code>.yaml. The code "default" with no file on
// disk yields the stock profile rather than an error.
func LoadPolicy(policiesDir, code string) (*PolicyProfile, error) {
	code = strings.ToLower(code)
	path := filepath.Join(policiesDir, fmt.Sprintf("policy_%s.yaml", code))

	data, err := os.ReadFile(path)
	if err != nil {
		if code == "default" && os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return nil, fmt.Errorf("load policy %q: %w", code, err)
	}

	var profile PolicyProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse policy %q: %w", code, err)
	}

	if profile.Code == "" {
		profile.Code = code
	}

	return &profile, nil
}

// LoadAllPolicies loads all policy_*.yaml files from the policies
// directory.
func LoadAllPolicies(policiesDir string) (map[string]*PolicyProfile, error) {
	matches, err := filepath.Glob(filepath.Join(policiesDir, "policy_*.yaml"))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*PolicyProfile, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var profile PolicyProfile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		if profile.Code == "" {
			// Extract code from filename: policy_strict.yaml -> strict
			base := filepath.Base(path)
			profile.Code = strings.TrimSuffix(strings.TrimPrefix(base, "policy_"), ".yaml")
		}

		profiles[profile.Code] = &profile
	}

	return profiles, nil
}

// DefaultPolicy returns the stock profile.
func DefaultPolicy() *PolicyProfile {
	defaults := nudge.DefaultThresholds()
	return &PolicyProfile{
		Name: "Default",
		Code: "default",
		Thresholds: ThresholdsConfig{
			BlockTotalCents:      defaults.BlockTotalCents,
			AlternativeLineCents: defaults.AlternativeLineCents,
			GentleItemCount:      defaults.GentleItemCount,
			BlockSeconds:         defaults.BlockSeconds,
		},
	}
}
