package observe

import (
	"sort"
	"strings"

	"github.com/daisuke19891023/goapgit/internal/gitx"
)

// ParseMergeTreeConflicts extracts the conflicted paths from
// `git merge-tree --write-tree` output. Paths are returned sorted and
// de-duplicated.
func ParseMergeTreeConflicts(output string) []string {
	seen := map[string]struct{}{}
	for _, line := range strings.Split(output, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || !strings.HasPrefix(stripped, "CONFLICT") {
			continue
		}
		idx := strings.LastIndex(stripped, " in ")
		if idx < 0 {
			continue
		}
		path := strings.TrimSpace(stripped[idx+len(" in "):])
		if path != "" {
			seen[path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// PredictMergeConflicts runs git merge-tree to predict which paths
// would conflict when merging theirs into ours, without touching the
// working tree.
func PredictMergeConflicts(facade *gitx.Facade, ours, theirs string) ([]string, error) {
	res, err := facade.RunUnchecked("merge-tree", "--write-tree", ours, theirs)
	if err != nil {
		return nil, err
	}
	return ParseMergeTreeConflicts(res.Stdout), nil
}
