// Package backup copies files aside before they are replaced. One Session
// maps to one timestamped directory and one sync invocation.
package backup

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/utils"
	"github.com/rs/zerolog"
)

const (
	// ManifestFile lists every entry saved in a session
	ManifestFile = "MANIFEST"

	// outsideHomeDir holds targets that do not live under home
	outsideHomeDir = "_root"
)

// Entry is one saved path
type Entry struct {
	Original string
	Backup   string
	Checksum string
}

// Session is a lazily created backup directory
type Session struct {
	fs      filesystem.FS
	dir     string
	home    string
	created bool
	entries []Entry
	logger  zerolog.Logger
}

// NewSession prepares a session under root named after now. Nothing is
// written until the first Save.
func NewSession(fsys filesystem.FS, root, home string, now time.Time) *Session {
	return &Session{
		fs:     fsys,
		dir:    filepath.Join(root, now.Format(paths.BackupTimestampFormat)),
		home:   home,
		logger: logging.GetLogger("backup"),
	}
}

// Dir returns the session directory path
func (s *Session) Dir() string { return s.dir }

// Created reports whether anything has been saved yet
func (s *Session) Created() bool { return s.created }

// Entries returns what has been saved so far
func (s *Session) Entries() []Entry { return append([]Entry(nil), s.entries...) }

// PathFor returns where original would be stored in this session
func (s *Session) PathFor(original string) string {
	clean := filepath.Clean(original)
	if s.home != "" {
		if rel, err := filepath.Rel(s.home, clean); err == nil && rel != "." && !escapes(rel) {
			return filepath.Join(s.dir, rel)
		}
	}
	return filepath.Join(s.dir, outsideHomeDir, clean)
}

// escapes reports whether a Rel result climbs out of its base. ..foo is
// an ordinary name.
func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Save copies original into the session and returns the backup path.
// Symlinks are saved as symlinks with the same link text.
func (s *Session) Save(original string) (string, error) {
	info, err := s.fs.Lstat(original)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", original)
	}

	if err := s.ensureDir(); err != nil {
		return "", err
	}

	dest := s.PathFor(original)
	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrBackupCreate, "cannot create %s", filepath.Dir(dest))
	}

	checksum := "-"
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		err = s.copyLink(original, dest)
	case info.IsDir():
		err = s.copyDir(original, dest)
	default:
		err = s.copyFile(original, dest, info.Mode().Perm())
		if err == nil {
			checksum, err = utils.CalculateFileChecksum(dest)
		}
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrBackupCopy, "failed to back up %s", original).
			WithDetail("backup", dest)
	}

	s.entries = append(s.entries, Entry{Original: original, Backup: dest, Checksum: checksum})
	if err := s.writeManifest(); err != nil {
		return "", err
	}

	s.logger.Info().Str("original", original).Str("backup", dest).Msg("Backed up")
	return dest, nil
}

// SaveContent stores data fetched from elsewhere, such as a remote host,
// at rel inside the session. origin is what the manifest records.
func (s *Session) SaveContent(rel, origin string, data []byte) (string, error) {
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || escapes(clean) || clean == "." {
		return "", errors.Newf(errors.ErrInvalidInput, "backup path %s must stay inside the session", rel)
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	dest := filepath.Join(s.dir, clean)
	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrBackupCreate, "cannot create %s", filepath.Dir(dest))
	}
	if err := s.fs.WriteFile(dest, data, 0600); err != nil {
		return "", errors.Wrapf(err, errors.ErrBackupCopy, "failed to back up %s", origin).
			WithDetail("backup", dest)
	}

	s.entries = append(s.entries, Entry{Original: origin, Backup: dest, Checksum: utils.ChecksumBytes(data)})
	if err := s.writeManifest(); err != nil {
		return "", err
	}

	s.logger.Info().Str("original", origin).Str("backup", dest).Msg("Backed up")
	return dest, nil
}

func (s *Session) ensureDir() error {
	if s.created {
		return nil
	}
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrBackupCreate, "cannot create backup directory %s", s.dir)
	}
	s.created = true
	s.logger.Debug().Str("dir", s.dir).Msg("Created backup session")
	return nil
}

func (s *Session) copyFile(src, dst string, perm fs.FileMode) error {
	data, err := s.fs.ReadFile(src)
	if err != nil {
		return err
	}
	return s.fs.WriteFile(dst, data, perm)
}

func (s *Session) copyLink(src, dst string) error {
	dest, err := s.fs.Readlink(src)
	if err != nil {
		return err
	}
	return s.fs.Symlink(dest, dst)
}

func (s *Session) copyDir(src, dst string) error {
	if err := s.fs.MkdirAll(dst, 0755); err != nil {
		return err
	}
	entries, err := s.fs.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		info, err := s.fs.Lstat(from)
		if err != nil {
			return err
		}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			err = s.copyLink(from, to)
		case info.IsDir():
			err = s.copyDir(from, to)
		default:
			err = s.copyFile(from, to, info.Mode().Perm())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) writeManifest() error {
	var b strings.Builder
	for _, e := range s.entries {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", e.Original, e.Backup, e.Checksum)
	}
	path := filepath.Join(s.dir, ManifestFile)
	if err := s.fs.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return nil
}
