// Package diagnose inspects git configuration and repository shape and
// reports recommended settings plus large-repo guidance.
package diagnose

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/daisuke19891023/goapgit/internal/gitx"
)

// Thresholds chosen to indicate when the working tree or history may
// become unwieldy.
const (
	TrackedFileThreshold = 100_000
	SizePackThresholdKiB = 1_000_000 // ~= 1 GiB
	CommitCountThreshold = 50_000
)

// recommendedSettings are the git config keys the tool relies on to
// keep conflict remediation predictable.
var recommendedSettings = [][2]string{
	{"merge.conflictStyle", "zdiff3"},
	{"rerere.enabled", "true"},
	{"pull.rebase", "true"},
}

// GitConfigCheck records one config key against its recommended value.
type GitConfigCheck struct {
	Key                   string `json:"key"`
	Recommended           string `json:"recommended"`
	Detected              string `json:"detected,omitempty"`
	MatchesRecommendation bool   `json:"matches_recommendation"`
}

// RepoStats aggregates repository statistics used for guidance. Fields
// are pointers so a stat git could not provide is distinguishable from
// zero.
type RepoStats struct {
	TrackedFiles *int `json:"tracked_files,omitempty"`
	SizePackKiB  *int `json:"size_pack_kib,omitempty"`
	SizeLooseKiB *int `json:"size_loose_kib,omitempty"`
	CommitCount  *int `json:"commit_count,omitempty"`
}

// LargeRepoGuidance carries advice for handling large repositories.
type LargeRepoGuidance struct {
	Triggered   bool     `json:"triggered"`
	Reasons     []string `json:"reasons"`
	Suggestions []string `json:"suggestions"`
}

// Report is the full diagnosis output.
type Report struct {
	GitConfig         []GitConfigCheck  `json:"git_config"`
	RepoStats         *RepoStats        `json:"repo_stats"`
	LargeRepoGuidance LargeRepoGuidance `json:"large_repo_guidance"`
}

// Generate collects git configuration status and repository statistics
// through the facade. Missing stats never fail a diagnosis; they are
// simply absent from the report.
func Generate(f *gitx.Facade) Report {
	checks := make([]GitConfigCheck, 0, len(recommendedSettings))
	for _, setting := range recommendedSettings {
		checks = append(checks, checkSetting(f, setting[0], setting[1]))
	}
	stats := gatherRepoStats(f)
	return Report{
		GitConfig:         checks,
		RepoStats:         stats,
		LargeRepoGuidance: buildGuidance(stats),
	}
}

// ToJSON serialises the report, optionally indented.
func (r Report) ToJSON(pretty bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", fmt.Errorf("marshal diagnose report: %w", err)
	}
	return string(data), nil
}

func checkSetting(f *gitx.Facade, key, expected string) GitConfigCheck {
	detected := readGlobalConfig(f, key)
	return GitConfigCheck{
		Key:                   key,
		Recommended:           expected,
		Detected:              detected,
		MatchesRecommendation: detected != "" && strings.EqualFold(detected, expected),
	}
}

func readGlobalConfig(f *gitx.Facade, key string) string {
	res, err := f.RunUnchecked("config", "--global", "--get", key)
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

func gatherRepoStats(f *gitx.Facade) *RepoStats {
	count, err := f.RunUnchecked("count-objects", "-v")
	if err != nil || count.ExitCode != 0 {
		return nil
	}
	objects := parseCountObjects(count.Stdout)
	stats := &RepoStats{
		TrackedFiles: countTrackedFiles(f),
		CommitCount:  countCommits(f),
	}
	if v, ok := objects["size-pack"]; ok {
		stats.SizePackKiB = &v
	}
	if v, ok := objects["size"]; ok {
		stats.SizeLooseKiB = &v
	}
	return stats
}

func buildGuidance(stats *RepoStats) LargeRepoGuidance {
	if stats == nil {
		return LargeRepoGuidance{}
	}
	var reasons []string
	if stats.TrackedFiles != nil && *stats.TrackedFiles >= TrackedFileThreshold {
		reasons = append(reasons,
			fmt.Sprintf("tracked_files %d exceeds threshold %d", *stats.TrackedFiles, TrackedFileThreshold))
	}
	if stats.SizePackKiB != nil && *stats.SizePackKiB >= SizePackThresholdKiB {
		reasons = append(reasons,
			fmt.Sprintf("size_pack_kib %d exceeds threshold %d", *stats.SizePackKiB, SizePackThresholdKiB))
	}
	if stats.CommitCount != nil && *stats.CommitCount >= CommitCountThreshold {
		reasons = append(reasons,
			fmt.Sprintf("commit_count %d exceeds threshold %d", *stats.CommitCount, CommitCountThreshold))
	}
	guidance := LargeRepoGuidance{Triggered: len(reasons) > 0, Reasons: reasons}
	if guidance.Triggered {
		guidance.Suggestions = []string{
			"Repository is large; consider using 'git sparse-checkout' to focus on required paths.",
			"Leverage 'git worktree add' to create focused working directories without duplicating the full clone.",
		}
	}
	return guidance
}

func countTrackedFiles(f *gitx.Facade) *int {
	res, err := f.RunUnchecked("ls-files", "-z")
	if err != nil || res.ExitCode != 0 {
		return nil
	}
	n := strings.Count(res.Stdout, "\x00")
	return &n
}

func countCommits(f *gitx.Facade) *int {
	res, err := f.RunUnchecked("rev-list", "--count", "HEAD")
	if err != nil || res.ExitCode != 0 {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return nil
	}
	return &n
}

// parseCountObjects extracts the integer fields from `git
// count-objects -v` output.
func parseCountObjects(output string) map[string]int {
	stats := make(map[string]int)
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		stats[strings.TrimSpace(key)] = n
	}
	return stats
}
