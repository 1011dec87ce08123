package challenge

import (
	"regexp"
	"strings"
)

// =============================================================================
// Flag Verification
// =============================================================================

// ValidateFlag checks a submitted flag against the configured flag
// predicates. When a flag format prefix is configured the candidate must be
// framed by the prefix and suffix, which are stripped before matching. Flags
// are tried in declared order; the first match wins.
func ValidateFlag(cfg *Config, submitted string) bool {
	if cfg.FlagFormatPrefix != "" {
		if !strings.HasPrefix(submitted, cfg.FlagFormatPrefix) ||
			!strings.HasSuffix(submitted, cfg.FlagFormatSuffix) {
			return false
		}
		// A short candidate can satisfy both checks with overlapping
		// prefix and suffix; it cannot contain an inner flag.
		if len(submitted) < len(cfg.FlagFormatPrefix)+len(cfg.FlagFormatSuffix) {
			return false
		}
		submitted = submitted[len(cfg.FlagFormatPrefix) : len(submitted)-len(cfg.FlagFormatSuffix)]
	}

	for _, f := range cfg.Flags {
		switch f.Type {
		case FlagTypeText:
			if submitted == f.Flag {
				return true
			}
		case FlagTypeRegex:
			// Unanchored, like re.search.
			if matched, err := regexp.MatchString(f.Flag, submitted); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// ValidateSolutionOutput verifies the flag printed by a solver container,
// trimming surrounding whitespace first.
func ValidateSolutionOutput(cfg *Config, output string) bool {
	return ValidateFlag(cfg, strings.TrimSpace(output))
}

// FirstTextFlag returns the first text-type flag wrapped in the configured
// flag format. It returns an empty string when there is no text flag.
func FirstTextFlag(cfg *Config) string {
	for _, f := range cfg.Flags {
		if f.Type != FlagTypeText {
			continue
		}
		if cfg.FlagFormatPrefix == "" {
			return f.Flag
		}
		return cfg.FlagFormatPrefix + f.Flag + cfg.FlagFormatSuffix
	}
	return ""
}
