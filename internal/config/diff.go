package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	// LogLevelChanged is true when the server log level changed; NewLogLevel
	// carries the new value.
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// CorrectionChanged is true when any correction tuning value changed.
	// The whole block is reapplied at once.
	CorrectionChanged bool
	NewCorrection     CorrectionConfig

	// ExtractionChanged is true when any extraction tuning value changed.
	// It only affects documents ingested after the reload.
	ExtractionChanged bool
	NewExtraction     ExtractionConfig
}

// Changed reports whether the diff carries any hot-reloadable change.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.CorrectionChanged || d.ExtractionChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart: provider,
// corpus, and listener changes require one.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Correction != new.Correction {
		d.CorrectionChanged = true
		d.NewCorrection = new.Correction
	}

	if old.Extraction != new.Extraction {
		d.ExtractionChanged = true
		d.NewExtraction = new.Extraction
	}

	return d
}
