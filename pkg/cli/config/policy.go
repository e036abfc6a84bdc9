package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model/policy"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// Policy holds the CLI flag pointing at the policy table file
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "Path to the policy table TOML file",
			Category:    "Policy",
			Value:       "policy.toml",
			Sources:     cli.EnvVars("TASKBEAT_POLICY_FILE"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured policy file path
func (x *Policy) Path() string {
	return x.path
}

// Configure loads and validates the policy table
func (x *Policy) Configure() (*policy.Table, error) {
	return LoadPolicyFile(x.path)
}

// PolicyFile is the TOML schema of the policy table. Durations are given
// in days; fractional values are allowed.
type PolicyFile struct {
	Tiers []TierConfig `toml:"tier"`
	Roles []RoleConfig `toml:"role"`
}

// TierConfig is one reminder threshold bucket. MaxDays of zero marks the
// unbounded long-task tier.
type TierConfig struct {
	MaxDays       float64 `toml:"max_days"`
	FirstLeadDays float64 `toml:"first_lead_days"`
	FinalLeadDays float64 `toml:"final_lead_days"`
}

// RoleConfig is the policy entry for one role category. Exactly one of
// ExtensionDays or ExtensionSplit must be set.
type RoleConfig struct {
	ID             string                `toml:"id"`
	Name           string                `toml:"name"`
	Tasks          map[string]float64    `toml:"tasks"`
	ExtensionDays  float64               `toml:"extension_days"`
	ExtensionSplit *SplitExtensionConfig `toml:"extension_split"`
}

// SplitExtensionConfig grants different extensions by task-type family
type SplitExtensionConfig struct {
	Keyword     string  `toml:"keyword"`
	MatchedDays float64 `toml:"matched_days"`
	OthersDays  float64 `toml:"others_days"`
}

// LoadPolicyFile reads, parses and validates a policy table file
func LoadPolicyFile(path string) (*policy.Table, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", path))
	}

	var file PolicyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy TOML", goerr.V("path", path))
	}

	table, err := file.Build()
	if err != nil {
		return nil, goerr.Wrap(err, "policy validation failed", goerr.V("path", path))
	}
	return table, nil
}

// Build converts the file schema into a validated policy table
func (f *PolicyFile) Build() (*policy.Table, error) {
	rules := make(map[types.RoleID]policy.Rule, len(f.Roles))
	for _, role := range f.Roles {
		if role.ID == "" {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "role id is required", goerr.V("name", role.Name))
		}
		if _, exists := rules[types.RoleID(role.ID)]; exists {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "duplicate role id", goerr.V("id", role.ID))
		}

		ext, err := role.extensionRule()
		if err != nil {
			return nil, err
		}

		tasks := make(map[types.TaskType]time.Duration, len(role.Tasks))
		for name, d := range role.Tasks {
			tasks[types.TaskType(name)] = days(d)
		}

		rules[types.RoleID(role.ID)] = policy.Rule{
			Name:      role.Name,
			Tasks:     tasks,
			Extension: ext,
		}
	}

	thresholds := make(policy.Thresholds, 0, len(f.Tiers))
	for _, tier := range f.Tiers {
		thresholds = append(thresholds, policy.Tier{
			MaxDuration: days(tier.MaxDays),
			FirstLead:   days(tier.FirstLeadDays),
			FinalLead:   days(tier.FinalLeadDays),
		})
	}

	return policy.NewTable(rules, thresholds)
}

func (r *RoleConfig) extensionRule() (policy.ExtensionRule, error) {
	flat := r.ExtensionDays > 0
	split := r.ExtensionSplit != nil

	switch {
	case flat && split:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "role defines both flat and split extensions", goerr.V("id", r.ID))
	case flat:
		return policy.FlatExtension(days(r.ExtensionDays)), nil
	case split:
		return policy.SplitExtension{
			Keyword: r.ExtensionSplit.Keyword,
			Matched: days(r.ExtensionSplit.MatchedDays),
			Others:  days(r.ExtensionSplit.OthersDays),
		}, nil
	default:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "role defines no extension rule", goerr.V("id", r.ID))
	}
}

func days(d float64) time.Duration {
	return time.Duration(d * float64(24*time.Hour))
}
