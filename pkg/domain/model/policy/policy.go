package policy

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// ExtensionRule resolves the extension amount a role grants for a task
// type. Exactly one concrete variant is defined per role: a flat amount,
// or a split keyed by task-type family.
type ExtensionRule interface {
	// Amount returns the extension duration for the given task type
	Amount(taskType types.TaskType) time.Duration

	// Validate checks if the rule is well-formed
	Validate() error
}

// FlatExtension grants the same extension regardless of task type
type FlatExtension time.Duration

// Amount returns the flat extension duration
func (e FlatExtension) Amount(types.TaskType) time.Duration {
	return time.Duration(e)
}

// Validate checks if the flat extension is positive
func (e FlatExtension) Validate() error {
	if e <= 0 {
		return goerr.New("flat extension must be positive", goerr.V("amount", time.Duration(e)))
	}
	return nil
}

// SplitExtension grants one of two amounts depending on whether the task
// type contains the family keyword (e.g. "skit" tasks vs MV tasks for the
// editor role).
type SplitExtension struct {
	Keyword string
	Matched time.Duration
	Others  time.Duration
}

// Amount returns the family-specific extension duration
func (e SplitExtension) Amount(taskType types.TaskType) time.Duration {
	if strings.Contains(taskType.String(), e.Keyword) {
		return e.Matched
	}
	return e.Others
}

// Validate checks if the split extension is well-formed
func (e SplitExtension) Validate() error {
	if e.Keyword == "" {
		return goerr.New("split extension requires a family keyword")
	}
	if e.Matched <= 0 || e.Others <= 0 {
		return goerr.New("split extension amounts must be positive",
			goerr.V("matched", e.Matched), goerr.V("others", e.Others))
	}
	return nil
}

// Rule is the policy entry for one role category
type Rule struct {
	Name      string
	Tasks     map[types.TaskType]time.Duration
	Extension ExtensionRule
}

// Duration returns the standard duration for a task type, if defined
func (r Rule) Duration(taskType types.TaskType) (time.Duration, bool) {
	d, ok := r.Tasks[taskType]
	return d, ok
}

// Validate checks if the rule is well-formed. A role without any
// applicable extension rule is a configuration error, fatal at load time.
func (r Rule) Validate() error {
	if r.Name == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "role name is required")
	}
	if len(r.Tasks) == 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "role defines no task types", goerr.V("role", r.Name))
	}
	for taskType, d := range r.Tasks {
		if taskType == types.TaskTypeCustom {
			return goerr.Wrap(types.ErrInvalidConfig, "custom is a reserved task type", goerr.V("role", r.Name))
		}
		if d <= 0 {
			return goerr.Wrap(types.ErrInvalidConfig, "task duration must be positive",
				goerr.V("role", r.Name), goerr.V("taskType", taskType), goerr.V("duration", d))
		}
	}
	if r.Extension == nil {
		return goerr.Wrap(types.ErrInvalidConfig, "role defines no extension rule", goerr.V("role", r.Name))
	}
	if err := r.Extension.Validate(); err != nil {
		return goerr.Wrap(types.ErrInvalidConfig, "invalid extension rule",
			goerr.V("role", r.Name), goerr.V("cause", err.Error()))
	}
	return nil
}

// Tier defines reminder lead times for one bucket of task durations.
// MaxDuration of zero means unbounded (the long-task tier).
type Tier struct {
	MaxDuration time.Duration
	FirstLead   time.Duration
	FinalLead   time.Duration
}

// Thresholds is the ordered list of reminder tiers, shortest bucket first
type Thresholds []Tier

// ForDuration selects the tier matching the original task duration
func (t Thresholds) ForDuration(d time.Duration) Tier {
	for _, tier := range t {
		if tier.MaxDuration > 0 && d <= tier.MaxDuration {
			return tier
		}
	}
	// Fall through to the unbounded tier, or the last one defined.
	for _, tier := range t {
		if tier.MaxDuration == 0 {
			return tier
		}
	}
	return t[len(t)-1]
}

// Validate checks if the thresholds are well-formed
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "at least one reminder tier is required")
	}
	for i, tier := range t {
		if tier.FirstLead <= 0 || tier.FinalLead <= 0 {
			return goerr.Wrap(types.ErrInvalidConfig, "reminder lead times must be positive", goerr.V("tier", i))
		}
		if tier.FinalLead > tier.FirstLead {
			return goerr.Wrap(types.ErrInvalidConfig, "final lead must not exceed first lead", goerr.V("tier", i))
		}
	}
	return nil
}

// DefaultThresholds returns the short/medium/long reminder tiers
func DefaultThresholds() Thresholds {
	const day = 24 * time.Hour
	return Thresholds{
		{MaxDuration: 7 * day, FirstLead: 2 * day, FinalLead: 1 * day},
		{MaxDuration: 21 * day, FirstLead: 5 * day, FinalLead: 1 * day},
		{MaxDuration: 0, FirstLead: 7 * day, FinalLead: 1 * day},
	}
}

// Table is the immutable policy mapping role categories to task durations
// and extension rules, plus the reminder thresholds. It is constructed
// once from configuration and passed explicitly; there is no ambient
// global policy state.
type Table struct {
	rules      map[types.RoleID]Rule
	thresholds Thresholds
}

// NewTable builds a validated policy table
func NewTable(rules map[types.RoleID]Rule, thresholds Thresholds) (*Table, error) {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}

	t := &Table{
		rules:      make(map[types.RoleID]Rule, len(rules)),
		thresholds: thresholds,
	}
	for id, rule := range rules {
		t.rules[id] = rule
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the whole table; any failure is fatal at startup
func (t *Table) Validate() error {
	if len(t.rules) == 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "policy table defines no roles")
	}
	for id, rule := range t.rules {
		if err := rule.Validate(); err != nil {
			return goerr.Wrap(err, "invalid role rule", goerr.V("roleID", id))
		}
	}
	return t.thresholds.Validate()
}

// Rule looks up the policy entry for a role category
func (t *Table) Rule(roleID types.RoleID) (Rule, bool) {
	rule, ok := t.rules[roleID]
	return rule, ok
}

// RoleIDs returns all role category IDs in the table
func (t *Table) RoleIDs() []types.RoleID {
	ids := make([]types.RoleID, 0, len(t.rules))
	for id := range t.rules {
		ids = append(ids, id)
	}
	return ids
}

// Thresholds returns the reminder threshold tiers
func (t *Table) Thresholds() Thresholds {
	return t.thresholds
}
