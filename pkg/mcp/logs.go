package mcp

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultLogGlob matches the per-server log files
const DefaultLogGlob = "mcp*.log"

// LogFile describes one log on disk
type LogFile struct {
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Match is one grep hit
type Match struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// Logs inspects the log directory
type Logs struct {
	Dir  string
	Glob string
}

// List returns matching log files, most recently modified first
func (l *Logs) List() ([]LogFile, error) {
	glob := l.Glob
	if glob == "" {
		glob = DefaultLogGlob
	}
	if _, err := os.Stat(l.Dir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMCPLogs, "log directory %s not available", l.Dir)
	}
	names, err := filepath.Glob(filepath.Join(l.Dir, glob))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMCPLogs, "bad log pattern %q", glob)
	}
	files := make([]LogFile, 0, len(names))
	for _, name := range names {
		info, err := os.Stat(name)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, LogFile{Path: name, Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Resolve turns a bare file name into a path inside Dir. An empty name
// picks the most recent log.
func (l *Logs) Resolve(name string) (string, error) {
	if name == "" {
		files, err := l.List()
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			return "", errors.Newf(errors.ErrMCPLogs, "no logs in %s", l.Dir)
		}
		return files[0].Path, nil
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(l.Dir, name), nil
}

// Tail returns the last n lines of path
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMCPLogs, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	if n <= 0 {
		return nil, nil
	}
	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = append(ring[1:], scanner.Text())
		} else {
			ring = append(ring, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMCPLogs, "cannot read %s", path)
	}
	return ring, nil
}

// Grep returns every line in files matching pattern
func Grep(files []string, pattern string, ignoreCase bool) ([]Match, error) {
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "bad pattern %q", pattern)
	}

	var matches []Match
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return matches, errors.Wrapf(err, errors.ErrMCPLogs, "cannot open %s", path)
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			if re.MatchString(scanner.Text()) {
				matches = append(matches, Match{File: path, Line: line, Text: scanner.Text()})
			}
		}
		_ = f.Close()
		if err := scanner.Err(); err != nil {
			return matches, errors.Wrapf(err, errors.ErrMCPLogs, "cannot read %s", path)
		}
	}
	return matches, nil
}

// Follow copies data appended to path into w until ctx is done. A file
// that is replaced (log rotation) is reopened from the start.
func Follow(ctx context.Context, path string, w io.Writer) error {
	logger := logging.GetLogger("mcp.logs")

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrMCPLogs, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return errors.Wrapf(err, errors.ErrMCPLogs, "cannot seek %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrMCPLogs, "cannot start file watcher")
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so rotation (remove + create) is seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, errors.ErrMCPLogs, "cannot watch %s", filepath.Dir(path))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			switch {
			case event.Op&fsnotify.Write != 0:
				if _, err := io.Copy(w, f); err != nil {
					return errors.Wrapf(err, errors.ErrMCPLogs, "cannot read %s", path)
				}
			case event.Op&fsnotify.Create != 0:
				logger.Debug().Str("path", path).Msg("Log recreated, reopening")
				_ = f.Close()
				if f, err = os.Open(path); err != nil {
					return errors.Wrapf(err, errors.ErrMCPLogs, "cannot reopen %s", path)
				}
				if _, err := io.Copy(w, f); err != nil {
					return errors.Wrapf(err, errors.ErrMCPLogs, "cannot read %s", path)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}
