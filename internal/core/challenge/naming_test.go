package challenge

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// DockerName Tests
// =============================================================================

func TestDockerName_Deterministic(t *testing.T) {
	a := DockerName("Pwn Me", "web", "c1")
	b := DockerName("Pwn Me", "web", "c1")
	assert.Equal(t, a, b)
}

func TestDockerName_DiffersPerInput(t *testing.T) {
	base := DockerName("Pwn Me", "web", "c1")
	assert.NotEqual(t, base, DockerName("Pwn Me!", "web", "c1"))
	assert.NotEqual(t, base, DockerName("Pwn Me", "db", "c1"))
	assert.NotEqual(t, base, DockerName("Pwn Me", "web", "c2"))
}

func TestDockerName_Shape(t *testing.T) {
	got := DockerName("Pwn Me", "web", "c1")
	assert.Regexp(t, regexp.MustCompile(`^pwn_me_web_[0-9a-f]{16}$`), got)
}

func TestDockerName_NoContainer(t *testing.T) {
	got := DockerName("Pwn Me", "", "c1")
	assert.Regexp(t, regexp.MustCompile(`^pwn_me_[0-9a-f]{16}$`), got)
}

func TestDockerName_LengthBound(t *testing.T) {
	long := "An Extremely Long Challenge Title That Goes On And On Forever And Ever"
	tests := []struct {
		name      string
		container string
		max       int
	}{
		{"with container", "some-very-long-container-name", 66},
		{"without container", "", 49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DockerName(long, tt.container, "some-challenge-id")
			assert.LessOrEqual(t, len(got), tt.max)
		})
	}
}

func TestDockerName_Sanitization(t *testing.T) {
	got := DockerName("__..--Çhállenge/ w:th junk$", "wéb server", "id")
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9_.-]+$`), got)
	// Leading separators are stripped before joining.
	assert.Regexp(t, regexp.MustCompile(`^hllenge`), got)
}

func TestDockerName_EmptyTitle(t *testing.T) {
	// Degenerate but must stay deterministic and within bounds.
	got := DockerName("", "", "")
	assert.Regexp(t, regexp.MustCompile(`^_[0-9a-f]{16}$`), got)
}

// =============================================================================
// SolutionTag Tests
// =============================================================================

func TestSolutionTag_Prefix(t *testing.T) {
	got := SolutionTag("Pwn Me", "c1")
	assert.Equal(t, "sol_"+DockerName("Pwn Me", "", "c1"), got)
}

func TestSolutionTag_IndependentOfContainers(t *testing.T) {
	// The solution tag uses the two-argument form only.
	assert.NotEqual(t, "sol_"+DockerName("Pwn Me", "web", "c1"), SolutionTag("Pwn Me", "c1"))
}
