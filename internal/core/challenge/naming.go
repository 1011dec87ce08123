package challenge

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// =============================================================================
// Resource Naming Functions
// =============================================================================

// tagUnsafe matches every character docker tags do not accept.
var tagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// DockerName converts challenge identity into a deterministic, most likely
// unique docker tag no longer than 66 characters. The digest segment is
// computed from the raw inputs, so any differing input yields a different
// tag while identical inputs always yield the same one.
//
// Example:
//
//	DockerName("Pwn Me", "web", "c1") // "pwn_me_web_<16 hex chars>"
func DockerName(title, containerName, challengeID string) string {
	sum := md5.Sum([]byte(title + "|" + containerName + "|" + challengeID))
	digest := hex.EncodeToString(sum[:])[:16]

	t := truncate(sanitizeTag(title), 32)

	if containerName != "" {
		c := truncate(sanitizeTag(containerName), 16)
		return strings.Join([]string{t, c, digest}, "_")
	}

	return strings.Join([]string{t, digest}, "_")
}

// SolutionTag returns the tag for the challenge's solver image.
func SolutionTag(title, challengeID string) string {
	return "sol_" + DockerName(title, "", challengeID)
}

// sanitizeTag maps an arbitrary string onto the docker tag alphabet:
// spaces become underscores, everything else outside [A-Za-z0-9_.-] is
// dropped, leading separator characters are stripped, and the result is
// lowercased.
func sanitizeTag(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = tagUnsafe.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "_.-")
	return strings.ToLower(s)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
