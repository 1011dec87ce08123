// Package configfile locates and loads challenge and CTF manifests on disk.
//
// A challenge is a directory containing a challenge.yml (or .yaml); a CTF
// root is marked by a ctf.yml. Discovery walks parent directories upwards
// for the nearest manifest and child directories downwards to enumerate
// every challenge under a CTF root.
package configfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artpar/challrun/internal/core/challenge"
)

// ErrNotFound is returned when no manifest exists in the searched
// directories.
var ErrNotFound = errors.New("config file not found")

var challengeNames = []string{"challenge.yml", "challenge.yaml"}
var ctfNames = []string{"ctf.yml", "ctf.yaml"}

// FindChallengeConfig returns the path of the challenge manifest for dir.
// With search enabled, parent directories are tried until the filesystem
// root.
func FindChallengeConfig(dir string, search bool) (string, error) {
	path, err := findUpwards(dir, challengeNames, search)
	if err != nil {
		where := "this directory"
		if search {
			where = "this or a parent directory"
		}
		return "", fmt.Errorf("could not find a challenge.yml file in %s: %w", where, ErrNotFound)
	}
	return path, nil
}

// FindCTFConfig returns the path of the nearest ctf.yml at or above dir.
func FindCTFConfig(dir string) (string, error) {
	path, err := findUpwards(dir, ctfNames, true)
	if err != nil {
		return "", fmt.Errorf("could not find a ctf.yml file in this or a parent directory: %w", ErrNotFound)
	}
	return path, nil
}

// LoadChallenge finds and parses the challenge manifest for dir. It returns
// the parsed config and the directory the manifest lives in, which callers
// should treat as the challenge root for relative paths.
func LoadChallenge(dir string, search bool) (*challenge.Config, string, error) {
	path, err := FindChallengeConfig(dir, search)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := challenge.ParseConfig(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return cfg, filepath.Dir(path), nil
}

// DiscoverChallenges returns the manifest paths of every challenge at or
// below root. Recursion stops at the first manifest found on each branch:
// a challenge directory never contains nested challenges.
func DiscoverChallenges(root string) ([]string, error) {
	for _, name := range challengeNames {
		p := filepath.Join(root, name)
		if fileExists(p) {
			return []string{p}, nil
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	var found []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub, err := DiscoverChallenges(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, err
		}
		found = append(found, sub...)
	}
	return found, nil
}

func findUpwards(dir string, names []string, search bool) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range names {
			p := filepath.Join(abs, name)
			if fileExists(p) {
				return p, nil
			}
		}
		if !search {
			return "", ErrNotFound
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotFound
		}
		abs = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
