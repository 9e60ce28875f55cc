package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"yttc/config"
	"yttc/state"
)

// Extensions recognized when processing a directory.
var srcExtensions = []string{".srv3", ".ytt", ".xml"}

func hasSrcExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range srcExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// Run implements the convert subcommand: a single file or every caption
// file under a directory, output names derived from the source.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite = cmd.Bool("overwrite")

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("unable to access source: %w", err)
	}
	if !fi.IsDir() {
		return processFile(src, dst, env, log)
	}

	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if entry.IsDir() || !hasSrcExtension(entry.Name()) {
			return nil
		}
		return processFile(path, dst, env, log)
	})
}

func processFile(src, dstDir string, env *state.LocalEnv, log *zap.Logger) (rerr error) {
	start := time.Now()
	log = log.With(zap.String("job", uuid.New().String()))
	log.Info("Processing", zap.String("src", src))

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dstDir, config.CleanFileName(base)+".ass")

	if _, err := os.Stat(dst); err == nil && !env.Overwrite {
		return fmt.Errorf("destination file already exists: %s", dst)
	}
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create destination file: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			rerr = multierr.Append(rerr, fmt.Errorf("unable to close destination file: %w", err))
		}
		if rerr != nil {
			// a structurally broken document yields no output at all
			rerr = multierr.Append(rerr, os.Remove(dst))
		}
	}()

	if err := Convert(data, out, log); err != nil {
		return err
	}

	log.Info("Converted", zap.String("dst", dst), zap.Duration("elapsed", time.Since(start)))
	return nil
}
