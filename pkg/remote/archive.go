package remote

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/klauspost/compress/gzip"
	ignore "github.com/sabhiram/go-gitignore"
)

// WriteArchive streams root as a gzip tar to w. Paths matching the
// gitignore-style excludes are skipped, and .git always is.
func WriteArchive(w io.Writer, root string, excludes []string) error {
	matcher := ignore.CompileIgnoreLines(ensureVCSExcluded(excludes)...)

	// WalkDir does not descend into a root that is itself a symlink
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRemoteTransfer, "cannot resolve %s", root)
	}
	root = resolved

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		probe := rel
		if d.IsDir() {
			probe += "/"
		}
		if matcher.MatchesPath(probe) || matcher.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		link := ""
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = rel
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrRemoteTransfer, "failed to archive %s", root)
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrRemoteTransfer, "failed to finish archive")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, errors.ErrRemoteTransfer, "failed to finish compression")
	}
	return nil
}
