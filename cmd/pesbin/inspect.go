package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/pesbin/field"
)

var (
	headerColor = color.New(color.Bold)
	matchColor  = color.New(color.FgGreen, color.Bold)
	dimColor    = color.New(color.FgHiBlack)
)

func infoCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show the variant, index geometry and fingerprint of an archive",
		ArgsUsage: "<archive>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}

			doc, err := e.open(ctx, cmd.Args().Get(0))
			if err != nil {
				return err
			}

			desc := doc.Descriptor()
			mapped := 0
			for _, s := range doc.Sections() {
				if doc.IsMapped(s.Name) {
					mapped++
				}
			}
			table := doc.Index().Table()

			tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(tw, "variant:\t%s\n", desc.Variant)
			_, _ = fmt.Fprintf(tw, "header length:\t%d\n", desc.HeaderLength)
			_, _ = fmt.Fprintf(tw, "index table:\t%d bytes at %d\n", desc.IndexTableLength, table.Offset)
			_, _ = fmt.Fprintf(tw, "sections:\t%d (%d mapped)\n", doc.Index().Len(), mapped)
			_, _ = fmt.Fprintf(tw, "size:\t%s (%s bytes)\n",
				humanize.IBytes(uint64(doc.Size())), humanize.Comma(int64(doc.Size())))
			_, _ = fmt.Fprintf(tw, "fingerprint:\t%016x\n", doc.Fingerprint())

			return tw.Flush()
		},
	}
}

func sectionsCmd(e *env) *cli.Command {
	var filter string

	return &cli.Command{
		Name:      "sections",
		Usage:     "List the sections of an archive in index order",
		ArgsUsage: "<archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "filter",
				Aliases:     []string{"f"},
				Usage:       "case-insensitive substring of the section name",
				Destination: &filter,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}

			doc, err := e.open(ctx, cmd.Args().Get(0))
			if err != nil {
				return err
			}

			needle := strings.ToLower(filter)
			tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, headerColor.Sprint("#\tNAME\tOFFSET\tLENGTH\tLAYOUT"))
			for _, s := range doc.Sections() {
				if needle != "" && !strings.Contains(strings.ToLower(s.Name), needle) {
					continue
				}
				layout := dimColor.Sprint("-")
				if doc.IsMapped(s.Name) {
					layout = "yes"
				}
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
					s.Ordinal, s.Name, s.Offset, humanize.IBytes(uint64(s.Length)), layout)
			}

			return tw.Flush()
		},
	}
}

func showCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the fields of a section",
		ArgsUsage: "<archive> <section>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}

			doc, err := e.openSection(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}

			return printRecords(e, doc.Records(), -1)
		},
	}
}

func findCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Highlight the first field of a section whose name contains text",
		ArgsUsage: "<archive> <section> <text>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 3); err != nil {
				return err
			}

			doc, err := e.openSection(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}

			text := cmd.Args().Get(2)
			_, idx, ok := doc.Find(text)
			if !ok {
				return fmt.Errorf("no field of %s matches %q", cmd.Args().Get(1), text)
			}

			return printRecords(e, doc.Records(), idx)
		},
	}
}

// printRecords writes one row per field; the row at highlight is emphasized.
func printRecords(e *env, records []field.Record, highlight int) error {
	tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, headerColor.Sprint("NAME\tTYPE\tVALUE\tNOTE"))

	for i, rec := range records {
		note := ""
		switch {
		case rec.Placeholder:
			note = "no layout, read-only"
		case rec.Padding:
			note = "padding"
		}

		row := fmt.Sprintf("%s\t%s\t%s\t%s", rec.Name, rec.Value.Kind(), rec.Value, note)
		switch {
		case i == highlight:
			row = matchColor.Sprint(row)
		case rec.ReadOnly():
			row = dimColor.Sprint(row)
		}
		_, _ = fmt.Fprintln(tw, row)
	}

	return tw.Flush()
}
