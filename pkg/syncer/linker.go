package syncer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"
)

// Linker replaces target with a symlink to source
type Linker interface {
	Link(ctx context.Context, source, target string) error
}

// SynthfsLinker runs each link as one synthfs batch: create the parent,
// clear the old target, create the symlink. A failing batch is rolled back.
type SynthfsLinker struct {
	fs     filesystem.FullFileSystem
	logger zerolog.Logger
}

// NewLinker returns a linker over the real filesystem
func NewLinker() *SynthfsLinker {
	osfs := filesystem.NewOSFileSystem("/")
	return NewLinkerWithFS(synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths())
}

// NewLinkerWithFS returns a linker over the given synthfs filesystem
func NewLinkerWithFS(fsys filesystem.FullFileSystem) *SynthfsLinker {
	return &SynthfsLinker{
		fs:     fsys,
		logger: logging.GetLogger("syncer.linker"),
	}
}

func (l *SynthfsLinker) Link(ctx context.Context, source, target string) error {
	sfs := synthfs.New()
	base := filepath.Base(target)
	stamp := time.Now().UnixNano()

	ops := []synthfs.Operation{
		sfs.CustomOperationWithID(fmt.Sprintf("mkdir_%s_%d", base, stamp), func(ctx context.Context, fsys filesystem.FileSystem) error {
			return fsys.MkdirAll(filepath.Dir(target), 0755)
		}),
		sfs.CustomOperationWithID(fmt.Sprintf("link_%s_%d", base, stamp), func(ctx context.Context, fsys filesystem.FileSystem) error {
			if err := fsys.Remove(target); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
				return err
			}
			return fsys.Symlink(source, target)
		}),
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true

	result, err := synthfs.RunWithOptions(ctx, l.fs, options, ops...)
	if result != nil {
		for _, opResult := range result.GetOperations() {
			if r, ok := opResult.(synthfs.OperationResult); ok {
				l.logger.Trace().
					Str("operationID", string(r.OperationID)).
					Dur("duration", r.Duration).
					Msg("synthfs operation finished")
			}
		}
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", target).
			WithDetail("source", source)
	}
	return nil
}
