package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	e := &env{stdout: stdout, stderr: stderr}

	return &cli.Command{
		Name:      "pesbin",
		Usage:     "Inspect and edit constant game-data archives",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     e.globalFlags(),
		Before:    e.before,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			infoCmd(e),
			sectionsCmd(e),
			showCmd(e),
			findCmd(e),
			setCmd(e),
			exportCmd(e),
			importCmd(e),
			restoreCmd(e),
		},
	}
}
