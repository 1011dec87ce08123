package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func formatConfig(flags ...Flag) *Config {
	return &Config{
		Title:            "Test",
		FlagFormatPrefix: "flag{",
		FlagFormatSuffix: "}",
		Flags:            flags,
	}
}

// =============================================================================
// ValidateFlag Tests
// =============================================================================

func TestValidateFlag_TextWithFormat(t *testing.T) {
	cfg := formatConfig(Flag{Type: FlagTypeText, Flag: "abc"})

	assert.True(t, ValidateFlag(cfg, "flag{abc}"))
	assert.False(t, ValidateFlag(cfg, "abc"))
	assert.False(t, ValidateFlag(cfg, "flag{abd}"))
}

func TestValidateFlag_OverlappingAffixes(t *testing.T) {
	// A candidate shorter than prefix+suffix can still begin with the
	// prefix and end with the suffix when the two overlap. It must be
	// rejected, not stripped.
	cfg := &Config{
		FlagFormatPrefix: "x",
		FlagFormatSuffix: "x",
		Flags:            []Flag{{Type: FlagTypeText, Flag: ""}},
	}
	assert.NotPanics(t, func() {
		assert.False(t, ValidateFlag(cfg, "x"))
	})

	cfg = &Config{
		FlagFormatPrefix: "flag{",
		FlagFormatSuffix: "{",
		Flags:            []Flag{{Type: FlagTypeRegex, Flag: ".*"}},
	}
	assert.False(t, ValidateFlag(cfg, "flag{"))
	assert.True(t, ValidateFlag(cfg, "flag{x{"))
}

func TestValidateFlag_MissingSuffix(t *testing.T) {
	cfg := formatConfig(Flag{Type: FlagTypeText, Flag: "abc"})
	assert.False(t, ValidateFlag(cfg, "flag{abc"))
}

func TestValidateFlag_RegexNoFormat(t *testing.T) {
	cfg := &Config{Flags: []Flag{{Type: FlagTypeRegex, Flag: "^[0-9]{4}$"}}}

	assert.True(t, ValidateFlag(cfg, "1234"))
	assert.False(t, ValidateFlag(cfg, "12a4"))
}

func TestValidateFlag_RegexUnanchored(t *testing.T) {
	cfg := &Config{Flags: []Flag{{Type: FlagTypeRegex, Flag: "secret"}}}
	assert.True(t, ValidateFlag(cfg, "the secret value"))
}

func TestValidateFlag_FirstMatchWins(t *testing.T) {
	cfg := &Config{Flags: []Flag{
		{Type: FlagTypeText, Flag: "first"},
		{Type: FlagTypeText, Flag: "second"},
	}}
	assert.True(t, ValidateFlag(cfg, "first"))
	assert.True(t, ValidateFlag(cfg, "second"))
	assert.False(t, ValidateFlag(cfg, "third"))
}

func TestValidateFlag_NoFlags(t *testing.T) {
	assert.False(t, ValidateFlag(&Config{}, "anything"))
}

func TestValidateFlag_InvalidRegexIgnored(t *testing.T) {
	cfg := &Config{Flags: []Flag{
		{Type: FlagTypeRegex, Flag: "("},
		{Type: FlagTypeText, Flag: "abc"},
	}}
	assert.True(t, ValidateFlag(cfg, "abc"))
}

// =============================================================================
// ValidateSolutionOutput Tests
// =============================================================================

func TestValidateSolutionOutput_TrimsWhitespace(t *testing.T) {
	cfg := formatConfig(Flag{Type: FlagTypeText, Flag: "abc"})

	assert.True(t, ValidateSolutionOutput(cfg, "  flag{abc}\n"))
	assert.False(t, ValidateSolutionOutput(cfg, "flag {abc}"))
}

// =============================================================================
// FirstTextFlag Tests
// =============================================================================

func TestFirstTextFlag_Wrapped(t *testing.T) {
	cfg := formatConfig(
		Flag{Type: FlagTypeRegex, Flag: "^x+$"},
		Flag{Type: FlagTypeText, Flag: "abc"},
	)
	assert.Equal(t, "flag{abc}", FirstTextFlag(cfg))
}

func TestFirstTextFlag_NoPrefix(t *testing.T) {
	cfg := &Config{Flags: []Flag{{Type: FlagTypeText, Flag: "abc"}}}
	assert.Equal(t, "abc", FirstTextFlag(cfg))
}

func TestFirstTextFlag_NoTextFlag(t *testing.T) {
	cfg := &Config{Flags: []Flag{{Type: FlagTypeRegex, Flag: "^x+$"}}}
	assert.Equal(t, "", FirstTextFlag(cfg))
}
