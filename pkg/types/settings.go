package types

// Free-text site settings stored as key/value rows.
const (
	SettingApplicationRules = "application_rules"
	SettingUsageTerms       = "usage_terms"
)

// SettingDefaults is served when the settings table has no row for a key.
var SettingDefaults = map[string]string{
	SettingApplicationRules: "",
	SettingUsageTerms:       "",
}

type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}
