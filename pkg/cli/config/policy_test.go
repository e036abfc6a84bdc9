package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harmonix-lab/taskbeat/pkg/cli/config"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

const day = 24 * time.Hour

func writePolicyFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()
	return path
}

func TestLoadPolicyFile(t *testing.T) {
	path := writePolicyFile(t, `
[[tier]]
max_days = 7
first_lead_days = 2
final_lead_days = 1

[[tier]]
max_days = 0
first_lead_days = 7
final_lead_days = 1

[[role]]
id = "role-va"
name = "VA"
extension_days = 2
[role.tasks]
skit = 7
cover = 14

[[role]]
id = "role-editor"
name = "Editor"
[role.extension_split]
keyword = "skit"
matched_days = 2
others_days = 4
[role.tasks]
full_mv = 21
skit_edit = 10
`)

	table, err := config.LoadPolicyFile(path)
	gt.NoError(t, err).Required()

	va, ok := table.Rule("role-va")
	gt.Bool(t, ok).True()
	gt.Value(t, va.Name).Equal("VA")
	d, ok := va.Duration("skit")
	gt.Bool(t, ok).True()
	gt.Value(t, d).Equal(7 * day)
	gt.Value(t, va.Extension.Amount("skit")).Equal(2 * day)

	editor, ok := table.Rule("role-editor")
	gt.Bool(t, ok).True()
	gt.Value(t, editor.Extension.Amount("skit_edit")).Equal(2 * day)
	gt.Value(t, editor.Extension.Amount("full_mv")).Equal(4 * day)

	tier := table.Thresholds().ForDuration(5 * day)
	gt.Value(t, tier.FirstLead).Equal(2 * day)
	tier = table.Thresholds().ForDuration(30 * day)
	gt.Value(t, tier.FirstLead).Equal(7 * day)
}

func TestLoadPolicyFileDefaultsThresholds(t *testing.T) {
	path := writePolicyFile(t, `
[[role]]
id = "role-va"
name = "VA"
extension_days = 2
[role.tasks]
skit = 7
`)

	table, err := config.LoadPolicyFile(path)
	gt.NoError(t, err).Required()
	gt.Array(t, table.Thresholds()).Length(3)
}

func TestLoadPolicyFileRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no extension rule": `
[[role]]
id = "role-va"
name = "VA"
[role.tasks]
skit = 7
`,
		"both extension rules": `
[[role]]
id = "role-va"
name = "VA"
extension_days = 2
[role.extension_split]
keyword = "skit"
matched_days = 2
others_days = 4
[role.tasks]
skit = 7
`,
		"duplicate role id": `
[[role]]
id = "role-va"
name = "VA"
extension_days = 2
[role.tasks]
skit = 7

[[role]]
id = "role-va"
name = "VA again"
extension_days = 2
[role.tasks]
cover = 14
`,
		"reserved custom task": `
[[role]]
id = "role-va"
name = "VA"
extension_days = 2
[role.tasks]
custom = 7
`,
		"no roles at all": `
[[tier]]
max_days = 7
first_lead_days = 2
final_lead_days = 1
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writePolicyFile(t, body)
			_, err := config.LoadPolicyFile(path)
			gt.Error(t, err).Is(types.ErrInvalidConfig)
		})
	}
}

func TestLoadPolicyFileMissing(t *testing.T) {
	_, err := config.LoadPolicyFile(filepath.Join(t.TempDir(), "nope.toml"))
	gt.Error(t, err)
}
