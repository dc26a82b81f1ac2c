package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/pesbin"
	"github.com/arloliu/pesbin/archive"
	"github.com/arloliu/pesbin/format"
	"github.com/arloliu/pesbin/internal/logger"
	"github.com/arloliu/pesbin/mapper"
)

// env is the state shared by all commands: global flags and config. The logger
// travels in the command context.
type env struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	layoutsDir  string
	variant     string
	logLevel    string
	logFormat   string
	backupCodec string

	codec format.CompressionType
}

func (e *env) globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       defaultConfigPath(),
			Destination: &e.configPath,
		},
		&cli.StringFlag{
			Name:        "layouts",
			Aliases:     []string{"l"},
			Usage:       "directory holding <variant>.yaml layout sets",
			Sources:     cli.EnvVars("PESBIN_LAYOUTS"),
			Destination: &e.layoutsDir,
		},
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "archive variant (match, player, team); detected from the file name when empty",
			Destination: &e.variant,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &e.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &e.logFormat,
		},
		&cli.StringFlag{
			Name:        "backup-codec",
			Usage:       "compression of backup snapshots (none, zstd, s2, lz4)",
			Value:       "zstd",
			Destination: &e.backupCodec,
		},
	}
}

func (e *env) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(e.configPath)
	if err != nil {
		return ctx, err
	}
	applyConfig(cmd, cfg, e)

	log := logger.ForFormat(e.logFormat, e.stderr, logger.ParseLevel(e.logLevel))

	e.codec, err = format.ParseCompressionType(e.backupCodec)
	if err != nil {
		return ctx, err
	}

	return logger.WithContext(ctx, log), nil
}

func (e *env) descriptor(path string) (format.Descriptor, error) {
	if e.variant == "" {
		desc, err := pesbin.Detect(path)
		if err != nil {
			return format.Descriptor{}, fmt.Errorf("%s: %w (use --variant)", path, err)
		}

		return desc, nil
	}

	v, err := format.ParseVariant(e.variant)
	if err != nil {
		return format.Descriptor{}, err
	}

	return format.ForVariant(v)
}

// open loads the archive at path with the layout set of its variant, if any.
func (e *env) open(ctx context.Context, path string) (*archive.Document, error) {
	desc, err := e.descriptor(path)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With("file", filepath.Base(path))
	opts := []archive.Option{archive.WithLogger(log)}

	if e.layoutsDir != "" {
		layoutPath := mapper.LayoutPath(e.layoutsDir, desc.Variant)
		ls, err := mapper.LoadLayoutSet(layoutPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("no layout set for variant, sections open as placeholders", "path", layoutPath)
		case err != nil:
			return nil, err
		default:
			opts = append(opts, archive.WithLayoutSet(ls))
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return pesbin.Load(data, desc, opts...)
}

// openSection opens the archive and the named section.
func (e *env) openSection(ctx context.Context, path, name string) (*archive.Document, error) {
	doc, err := e.open(ctx, path)
	if err != nil {
		return nil, err
	}
	if _, err := doc.OpenSection(name); err != nil {
		return nil, err
	}

	return doc, nil
}

// save writes doc to output, or back to src when output is empty. With
// withBackup an existing destination is snapshotted first.
func (e *env) save(ctx context.Context, doc *archive.Document, src, output string, withBackup bool) error {
	dest := src
	if output != "" {
		dest = output
	}

	if withBackup {
		if _, err := os.Stat(dest); err == nil {
			h, err := pesbin.SaveWithBackup(doc, dest, e.codec)
			if err != nil {
				return err
			}
			logger.FromContext(ctx).Info("backup written",
				"codec", h.Compression.String(),
				"raw", humanize.IBytes(uint64(h.RawSize)),
				"stored", humanize.IBytes(uint64(h.CompressedSize)))

			return nil
		}
	}

	return pesbin.Save(doc, dest)
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.NArg() < n {
		return fmt.Errorf("%s: expected %d arguments, got %d (usage: %s %s)",
			cmd.Name, n, cmd.NArg(), cmd.Name, cmd.ArgsUsage)
	}

	return nil
}
