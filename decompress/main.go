// Command decompress restores a file written by compress.
package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/fumin/srank"
	"github.com/fumin/srank/internal/fileutil"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "print sizes and speed",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	app := &cli.App{
		Name:      "decompress",
		Usage:     "restore a file written by compress",
		ArgsUsage: "<input> <output>",
		Flags:     []cli.Flag{verboseFlag},
		Action:    decompress,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

func decompress(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return errors.Errorf("usage: %s [flags] %s", ctx.App.Name, ctx.App.ArgsUsage)
	}
	input, output := ctx.Args().Get(0), ctx.Args().Get(1)

	f, err := os.Open(input)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	start := time.Now()
	err = fileutil.WriteFile(output, func(w io.Writer) error {
		return srank.Decompress(w, f)
	})
	if srank.IsCorrupt(err) {
		return errors.Wrapf(err, "%s is not a valid stream", input)
	}
	if err != nil {
		return errors.Wrap(err, input)
	}

	if ctx.Bool(verboseFlag.Name) {
		in, err := fileutil.Size(input)
		if err != nil {
			return errors.Wrap(err, "")
		}
		out, err := fileutil.Size(output)
		if err != nil {
			return errors.Wrap(err, "")
		}
		elapsed := time.Since(start)
		log.Printf("%d -> %d in %.3f seconds (%.2f MiB/s)", in, out, elapsed.Seconds(), float64(out)/(1<<20)/elapsed.Seconds())
	}
	return nil
}
