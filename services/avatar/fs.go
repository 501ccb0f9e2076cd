package avatarsvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/bdzone/staffboard/core/staff"
)

var _ staff.AvatarCleaner = (*FSCleaner)(nil)

// FSCleaner reclaims uploaded avatar files from local media storage.
// Files are laid out as <root>/avatars/<staffID>/<filename>; everything in a
// staff member's directory except the currently referenced file is stale.
type FSCleaner struct {
	root string
}

func NewFSCleaner(mediaRoot string) *FSCleaner {
	return &FSCleaner{root: filepath.Join(mediaRoot, "avatars")}
}

func (c *FSCleaner) Reclaim(ctx context.Context, staffID, keep string) error {
	dir := filepath.Join(c.root, staffID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading avatar dir %s", dir)
	}

	keepName := filepath.Base(keep)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || entry.Name() == keepName {
			continue
		}
		// external avatar URLs never collide with stored filenames
		if keep != "" && strings.HasSuffix(keep, "/"+entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return errors.Wrapf(err, "removing stale avatar %s", entry.Name())
		}
	}
	return nil
}
