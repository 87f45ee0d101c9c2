package actions

import (
	"go.uber.org/zap"

	"github.com/daisuke19891023/goapgit/internal/gitx"
)

const defaultRemote = "origin"

// FetchAll fetches all refs from remote with pruning and tags.
func FetchAll(f *gitx.Facade, log *zap.Logger, remote string, extraArgs ...string) error {
	if remote == "" {
		remote = defaultRemote
	}
	log.Info("fetching all remotes", zap.String("remote", remote))
	_, err := f.Fetch(remote, extraArgs...)
	return err
}
