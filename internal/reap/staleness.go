package reap

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"
)

// DaysPast returns the age of t relative to now, in fractional days.
// Both times are compared on the UTC clock.
func DaysPast(now, t time.Time) float64 {
	return now.UTC().Sub(t.UTC()).Hours() / 24
}

// Eligible reports whether a resource whose last activity was at
// lastActivity has been idle for at least graceDays. A resource sitting
// exactly on the boundary is eligible.
func Eligible(now, lastActivity time.Time, graceDays float64) bool {
	if lastActivity.IsZero() {
		return false
	}
	return DaysPast(now, lastActivity) >= graceDays
}

// NormalizeProject canonicalizes a project ID or name for whitelist
// matching: lowercased, dashes stripped, surrounding whitespace removed.
func NormalizeProject(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), "-", ""))
}

// ReadWhitelist parses a whitelist of project IDs/names, one per line.
// Entries are normalized so matching ignores case and dashes. Blank
// lines and lines starting with '#' are skipped.
func ReadWhitelist(r io.Reader) (map[string]struct{}, error) {
	whitelist := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		whitelist[NormalizeProject(line)] = struct{}{}
	}
	return whitelist, scanner.Err()
}

// LoadWhitelist reads a whitelist file from disk.
func LoadWhitelist(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWhitelist(f)
}

// Whitelisted reports whether a project is excluded from reaping by
// either its ID or its name.
func Whitelisted(whitelist map[string]struct{}, projectID, projectName string) bool {
	if _, ok := whitelist[NormalizeProject(projectID)]; ok {
		return true
	}
	if projectName == "" {
		return false
	}
	_, ok := whitelist[NormalizeProject(projectName)]
	return ok
}
