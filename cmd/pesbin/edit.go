package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/pesbin/archive"
	"github.com/arloliu/pesbin/backup"
	"github.com/arloliu/pesbin/field"
)

type writeOptions struct {
	output     string
	withBackup bool
}

func (w *writeOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "write the edited archive here instead of in place",
			Destination: &w.output,
		},
		&cli.BoolFlag{
			Name:        "backup",
			Aliases:     []string{"b"},
			Usage:       "snapshot the destination to <file>.bak before overwriting it",
			Destination: &w.withBackup,
		},
	}
}

func setCmd(e *env) *cli.Command {
	var w writeOptions

	return &cli.Command{
		Name:      "set",
		Usage:     "Change fields of a section and save the archive",
		ArgsUsage: "<archive> <section> <field=value>...",
		Flags:     w.flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 3); err != nil {
				return err
			}

			path, name := cmd.Args().Get(0), cmd.Args().Get(1)
			doc, err := e.openSection(ctx, path, name)
			if err != nil {
				return err
			}

			for _, assignment := range cmd.Args().Slice()[2:] {
				if err := applyAssignment(doc, assignment); err != nil {
					return err
				}
			}

			if !doc.Modified() {
				_, _ = fmt.Fprintln(e.stdout, "no changes")
				return nil
			}
			if err := e.save(ctx, doc, path, w.output, w.withBackup); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.stdout, "updated %s in %s\n", name, filepath.Base(path))

			return nil
		},
	}
}

// applyAssignment parses "field=value" with the kind of the current field.
func applyAssignment(doc *archive.Document, assignment string) error {
	name, raw, ok := strings.Cut(assignment, "=")
	if !ok || name == "" {
		return fmt.Errorf("invalid assignment %q, want field=value", assignment)
	}

	rec, err := doc.Field(name)
	if err != nil {
		return err
	}

	kind := rec.Value.Kind()
	if kind == field.KindNull {
		kind = field.KindInteger
	}
	v, err := field.Parse(kind, raw)
	if err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}

	return doc.SetField(name, v)
}

func exportCmd(e *env) *cli.Command {
	var output string

	return &cli.Command{
		Name:      "export",
		Usage:     "Write a section as JSON",
		ArgsUsage: "<archive> <section>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       `JSON file, "-" for stdout (default: <section base name>.json)`,
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}

			name := cmd.Args().Get(1)
			doc, err := e.openSection(ctx, cmd.Args().Get(0), name)
			if err != nil {
				return err
			}

			if output == "-" {
				return doc.ExportJSON(e.stdout)
			}
			if output == "" {
				output = archive.DefaultExportName(name)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := doc.ExportJSON(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.stdout, "exported %s to %s\n", name, output)

			return nil
		},
	}
}

func importCmd(e *env) *cli.Command {
	var w writeOptions

	return &cli.Command{
		Name:      "import",
		Usage:     "Apply a section JSON export to an archive and save it",
		ArgsUsage: "<archive> <json>",
		Flags:     w.flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}

			path := cmd.Args().Get(0)
			doc, err := e.open(ctx, path)
			if err != nil {
				return err
			}

			f, err := os.Open(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			defer f.Close()

			name, n, err := doc.ImportJSON(f)
			if err != nil {
				return err
			}
			if n == 0 {
				_, _ = fmt.Fprintf(e.stdout, "%s: no changes\n", name)
				return nil
			}
			if err := e.save(ctx, doc, path, w.output, w.withBackup); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.stdout, "%s: %d field(s) updated\n", name, n)

			return nil
		},
	}
}

func restoreCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Verify a backup snapshot and write the archive it holds",
		ArgsUsage: "<backup> <dest>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}

			h, err := backup.Restore(cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.stdout, "restored %s (%s, %s compressed)\n",
				cmd.Args().Get(1), humanize.IBytes(uint64(h.RawSize)), h.Compression)

			return nil
		},
	}
}
