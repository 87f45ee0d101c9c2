package observe

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/daisuke19891023/goapgit/internal/models"
)

const conflictStartMarker = "<<<<<<<"

// ClassifyConflict is the default conflict classifier. It counts
// conflict-start markers in the file to estimate hunk count and infers
// the conflict type from the file extension.
//
// It fails soft: when the path cannot be read, resolves outside the
// repository root, or traverses a symbolic link, the returned detail
// has HunkCount 0. Conflict presence is already established by the
// status line; the hunk count only feeds the difficulty score.
func ClassifyConflict(repoRoot, relPath string) models.ConflictDetail {
	detail := models.ConflictDetail{Path: relPath, Type: DetectConflictType(relPath)}

	full, ok := safeJoin(repoRoot, relPath)
	if !ok {
		return detail
	}

	file, err := os.Open(full)
	if err != nil {
		return detail
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), conflictStartMarker) {
			count++
		}
	}
	if scanner.Err() != nil {
		return detail
	}

	detail.HunkCount = count
	return detail
}

// DetectConflictType infers a conflict category from the extension.
func DetectConflictType(path string) models.ConflictType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return models.ConflictJSON
	case ".yaml", ".yml":
		return models.ConflictYAML
	case ".lock":
		return models.ConflictLock
	default:
		return models.ConflictText
	}
}

// safeJoin joins relPath onto root, rejecting paths that escape the
// root or pass through a symlink at any component.
func safeJoin(root, relPath string) (string, bool) {
	if filepath.IsAbs(relPath) {
		return "", false
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}

	cleaned := filepath.Clean(relPath)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", false
	}

	cur := rootAbs
	for _, part := range strings.Split(filepath.ToSlash(cleaned), "/") {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if err != nil {
			return "", false
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return "", false
		}
	}
	return cur, true
}
