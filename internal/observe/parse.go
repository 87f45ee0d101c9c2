// Package observe converts git status --porcelain=v2 output into the
// immutable repository state the planner and executor consume.
package observe

import (
	"strconv"
	"strings"

	"github.com/daisuke19891023/goapgit/internal/models"
)

// Classifier inspects a conflicted path and produces its detail record.
type Classifier func(repoRoot, relPath string) models.ConflictDetail

// StatusSummary is the accumulated porcelain information used to build
// a RepoState.
type StatusSummary struct {
	Branch           string
	Tracking         string
	SHA              string
	Ahead            int
	Behind           int
	StagedChanges    bool
	WorkingTreeDirty bool
	UntrackedPresent bool
	OngoingRebase    bool
	OngoingMerge     bool
	StashEntries     int
	Conflicts        []models.ConflictDetail
}

// ToState derives the full RepoState from the summary.
func (s StatusSummary) ToState(repoPath string) models.RepoState {
	return models.NewRepoState(models.StateInput{
		RepoPath:         repoPath,
		Ref:              models.RepoRef{Branch: s.Branch, Tracking: s.Tracking, SHA: s.SHA},
		Ahead:            s.Ahead,
		Behind:           s.Behind,
		StagedChanges:    s.StagedChanges,
		WorkingTreeDirty: s.WorkingTreeDirty,
		UntrackedPresent: s.UntrackedPresent,
		OngoingRebase:    s.OngoingRebase,
		OngoingMerge:     s.OngoingMerge,
		StashEntries:     s.StashEntries,
		Conflicts:        s.Conflicts,
	})
}

// ParsePorcelain accumulates header fields and entry flags from
// porcelain v2 lines in a single pass. Malformed header lines are
// ignored rather than rejected; unknown entry kinds conservatively mark
// the working tree dirty. Conflicted paths are classified in detection
// order, duplicates included.
func ParsePorcelain(lines []string, repoRoot string, classify Classifier) StatusSummary {
	s := StatusSummary{Branch: "HEAD"}
	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\n")
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			s.handleHeader(rest)
			continue
		}
		s.handleEntry(repoRoot, line, classify)
	}
	return s
}

func (s *StatusSummary) handleHeader(header string) {
	switch {
	case strings.HasPrefix(header, "branch.head "):
		s.Branch = header[len("branch.head "):]
	case strings.HasPrefix(header, "branch.upstream "):
		s.Tracking = header[len("branch.upstream "):]
	case strings.HasPrefix(header, "branch.oid "):
		sha := header[len("branch.oid "):]
		if sha != "(initial)" {
			s.SHA = sha
		}
	case strings.HasPrefix(header, "branch.ab "):
		tokens := strings.Fields(header)
		if len(tokens) >= 3 {
			if ahead, err := strconv.Atoi(strings.TrimPrefix(tokens[1], "+")); err == nil {
				s.Ahead = ahead
			}
			if behind, err := strconv.Atoi(strings.TrimPrefix(tokens[2], "-")); err == nil {
				s.Behind = behind
			}
		}
	case strings.HasPrefix(header, "stash "):
		if n, err := strconv.Atoi(header[len("stash "):]); err == nil {
			s.StashEntries = n
		}
	case strings.HasPrefix(header, "rebase"):
		s.OngoingRebase = true
	case strings.HasPrefix(header, "merge"):
		s.OngoingMerge = true
	}
}

func (s *StatusSummary) handleEntry(repoRoot, line string, classify Classifier) {
	switch line[0] {
	case '1', '2':
		s.handleTracked(repoRoot, line, classify)
	case 'u':
		s.WorkingTreeDirty = true
		s.Conflicts = append(s.Conflicts, classify(repoRoot, entryPath(line)))
	case '?':
		s.UntrackedPresent = true
	case '!':
		// ignored entries carry no signal
	default:
		s.WorkingTreeDirty = true
	}
}

func (s *StatusSummary) handleTracked(repoRoot, line string, classify Classifier) {
	meta, _, _ := strings.Cut(line, "\t")
	parts := strings.Fields(meta)

	status := ""
	if len(parts) > 1 {
		status = parts[1]
	}
	stagedCode, worktreeCode := byte('.'), byte('.')
	if len(status) > 0 {
		stagedCode = status[0]
	}
	if len(status) > 1 {
		worktreeCode = status[1]
	}

	if stagedCode != '.' {
		s.StagedChanges = true
	}
	if worktreeCode != '.' {
		s.WorkingTreeDirty = true
	}

	conflicted := stagedCode == 'U' || worktreeCode == 'U' ||
		status == "DD" || status == "AA"
	if conflicted {
		s.Conflicts = append(s.Conflicts, classify(repoRoot, entryPath(line)))
	}
}

// entryPath extracts the path from an entry line: everything after the
// first tab, cut at a NUL if one is present; falls back to the last
// space-separated field for lines without a tab.
func entryPath(line string) string {
	_, remainder, found := strings.Cut(line, "\t")
	if !found {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return ""
		}
		return fields[len(fields)-1]
	}
	if i := strings.IndexByte(remainder, 0); i >= 0 {
		remainder = remainder[:i]
	}
	return remainder
}
