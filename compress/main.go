// Command compress compresses a file with symbol ranking.
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

var (
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "print compression ratio, speed and rank statistics",
	}
	contextBitsFlag = &cli.IntFlag{
		Name:  "context-bits",
		Usage: "log2 of the number of context slots",
		Value: srank.DefaultOptions().ContextBits,
	}
	orderFlag = &cli.IntFlag{
		Name:  "order",
		Usage: "number of preceding bytes forming a context",
		Value: srank.DefaultOptions().Order,
	}
	capacityFlag = &cli.IntFlag{
		Name:  "capacity",
		Usage: "maximum number of symbols ranked per context",
		Value: srank.DefaultOptions().Capacity,
	}
	rateFlag = &cli.IntFlag{
		Name:  "rate",
		Usage: "adaptation shift of the probability estimator",
		Value: srank.DefaultOptions().Rate,
	}
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	app := &cli.App{
		Name:      "compress",
		Usage:     "compress a file with symbol ranking",
		ArgsUsage: "<input> <output>",
		Flags:     []cli.Flag{verboseFlag, contextBitsFlag, orderFlag, capacityFlag, rateFlag},
		Action:    compress,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

func compress(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return errors.Errorf("usage: %s [flags] %s", ctx.App.Name, ctx.App.ArgsUsage)
	}
	input, output := ctx.Args().Get(0), ctx.Args().Get(1)
	opts := &srank.Options{
		ContextBits: ctx.Int(contextBitsFlag.Name),
		Order:       ctx.Int(orderFlag.Name),
		Capacity:    ctx.Int(capacityFlag.Name),
		Rate:        ctx.Int(rateFlag.Name),
	}

	f, err := os.Open(input)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()
	size, err := fileutil.Size(input)
	if err != nil {
		return errors.Wrap(err, "")
	}

	start := time.Now()
	var st srank.Stats
	err = fileutil.WriteFile(output, func(w io.Writer) error {
		var err error
		st, err = srank.CompressStats(w, f, size, opts)
		return err
	})
	if err != nil {
		return errors.Wrap(err, input)
	}

	if ctx.Bool(verboseFlag.Name) {
		outSize, err := fileutil.Size(output)
		if err != nil {
			return errors.Wrap(err, "")
		}
		logRatio(size, outSize, time.Since(start))
		logStats(st)
	}
	return nil
}

func logRatio(in, out int64, elapsed time.Duration) {
	ratio := 0.0
	if in > 0 {
		ratio = 100 * float64(out) / float64(in)
	}
	speed := float64(in) / (1 << 20) / elapsed.Seconds()
	log.Printf("%d -> %d (%.2f%%) in %.3f seconds (%.2f MiB/s)", in, out, ratio, elapsed.Seconds(), speed)
}

func logStats(st srank.Stats) {
	if st.Symbols == 0 {
		return
	}
	pct := func(n int64) float64 { return 100 * float64(n) / float64(st.Symbols) }
	for r, n := range st.Hits {
		if n == 0 {
			continue
		}
		log.Printf("rank %d: %d (%.2f%%)", r, n, pct(n))
	}
	log.Printf("escapes: %d (%.2f%%), slots claimed: %d", st.Escapes, pct(st.Escapes), st.Resets)
}
