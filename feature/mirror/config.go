package mirror

// Config holds the mirror job settings.
type Config struct {
	// SourceTable is the database table to mirror from. Ignored when
	// SourceObject is set.
	SourceTable string `mapstructure:"source_table" default:""`

	// SourceObject is the storage object (JSON array of records) to mirror
	// from. Takes precedence over SourceTable.
	SourceObject string `mapstructure:"source_object" default:""`

	// DestTable is the database table to mirror into.
	DestTable string `mapstructure:"dest_table" default:""`

	// RulesObject is the storage object holding the rule document.
	RulesObject string `mapstructure:"rules_object" default:"mirror/rules.json"`

	// CacheTTLSeconds is the dataset snapshot TTL. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`

	// ReportPrefix is the storage prefix for apply run reports. Empty
	// disables report uploads.
	ReportPrefix string `mapstructure:"report_prefix" default:""`
}

// Enabled reports whether the config describes a runnable mirror job.
func (c Config) Enabled() bool {
	if c.DestTable == "" {
		return false
	}
	return c.SourceTable != "" || c.SourceObject != ""
}
