package config

import "strings"

const (
	minTokenLength = 40
	minIDLength    = 20
)

// ValidationResult lists every problem found in a Config.
// An empty result means the config is usable.
type ValidationResult struct {
	Problems []string
}

func (v ValidationResult) OK() bool { return len(v.Problems) == 0 }

func (v *ValidationResult) add(msg string) {
	v.Problems = append(v.Problems, msg)
}

// Validate checks presence and length of the required values. It never
// fails the process: callers log the problems and carry on, and the
// affected component fails at the point of use.
func (c *Config) Validate() ValidationResult {
	var res ValidationResult

	if len(c.Telegram.Token) < minTokenLength {
		res.add("telegram token is missing or too short")
	}

	ids := []struct {
		name  string
		value string
	}{
		{"input folder", c.Google.InputFolder},
		{"archive folder", c.Google.ArchiveFolder},
		{"temp folder", c.Google.TempFolder},
		{"directory document", c.Google.DirectoryDoc},
	}
	for _, id := range ids {
		if len(strings.TrimSpace(id.value)) < minIDLength {
			res.add(id.name + " id is missing or too short")
		}
	}

	if c.Tracker.Enabled && !strings.HasPrefix(c.Tracker.URL, "https://") {
		res.add("tracker url must start with https:// when tracking is enabled")
	}

	return res
}
