// Command cluster prints the normalized compression distance between every pair of files in a directory.
//
// The distance of x and y is (K(xy) - min(K(x), K(y))) / max(K(x), K(y)),
// where K is the compressed size given by the chosen compressor.
package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/fumin/srank"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var (
	intelligenceFlag = &cli.StringFlag{
		Name:  "i",
		Usage: "intelligence type, srank or snappy",
		Value: "srank",
	}
	dataDirFlag = &cli.StringFlag{
		Name:  "d",
		Usage: "data directory",
		Value: "mammals10",
	}
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	app := &cli.App{
		Name:  "cluster",
		Usage: "normalized compression distance matrix of the files in a directory",
		Flags: []cli.Flag{intelligenceFlag, dataDirFlag},
		Action: func(ctx *cli.Context) error {
			return run(ctx.String(intelligenceFlag.Name), ctx.String(dataDirFlag.Name))
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(intelligence, dir string) error {
	complexity, err := newComplexityFunc(intelligence)
	if err != nil {
		return errors.Wrap(err, "")
	}
	data, err := listFiles(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if len(data) < 2 {
		return errors.Errorf("%d files in %s, need at least 2", len(data), dir)
	}
	contents, err := readFiles(data)
	if err != nil {
		return errors.Wrap(err, "")
	}
	distMat, err := distanceMatrix(complexity, contents)
	if err != nil {
		return errors.Wrap(err, "")
	}

	k := 0
	for i, dx := range data[:len(data)-1] {
		for _, dy := range data[i+1:] {
			log.Printf("\"%s\"-\"%s\": %f", dx, dy, distMat[k])
			k++
		}
	}
	if err := display(data, distMat); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func display(data []string, distMat []float64) error {
	// Print data as a comma separated array.
	buf := bytes.NewBuffer(nil)
	for i, fpath := range data {
		name := filepath.Base(fpath)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if _, err := buf.WriteString(strconv.Quote(base)); err != nil {
			return errors.Wrap(err, "")
		}
		if i == len(data)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	log.Printf("[%s]", buf.Bytes())

	// Print distance matrix as a comma separated array.
	buf.Reset()
	for i, f := range distMat {
		if _, err := buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
			return errors.Wrap(err, "")
		}
		if i == len(distMat)-1 {
			break
		}
		if err := buf.WriteByte(','); err != nil {
			return errors.Wrap(err, "")
		}
	}
	log.Printf("[%s]", buf.Bytes())

	return nil
}

// A complexityFunc estimates the Kolmogorov complexity of data by its compressed size.
type complexityFunc func(data []byte) (float64, error)

func newComplexityFunc(intelligence string) (complexityFunc, error) {
	switch intelligence {
	case "srank":
		return complexitySrank, nil
	case "snappy":
		return complexitySnappy, nil
	default:
		return nil, errors.Errorf("unknown intelligence type %q", intelligence)
	}
}

func complexitySrank(data []byte) (float64, error) {
	enc, err := srank.Encode(data, nil)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(len(enc)), nil
}

func complexitySnappy(data []byte) (float64, error) {
	return float64(len(snappy.Encode(nil, data))), nil
}

func distance(kx, ky, kxy float64) float64 {
	minxy := kx
	if ky < kx {
		minxy = ky
	}
	maxxy := kx
	if ky > kx {
		maxxy = ky
	}
	return (kxy - minxy) / maxxy
}

// distanceMatrix returns the upper triangle of the distance matrix of data, row by row.
// Every compression is independent, so they run in parallel.
func distanceMatrix(complexity complexityFunc, data [][]byte) ([]float64, error) {
	n := len(data)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	k := make([]float64, n)
	for i := range data {
		i := i
		g.Go(func() error {
			var err error
			k[i], err = complexity(data[i])
			return errors.Wrap(err, "")
		})
	}

	kxy := make([]float64, n*(n-1)/2)
	idx := 0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			pos, x, y := idx, data[i], data[j]
			g.Go(func() error {
				xy := make([]byte, 0, len(x)+len(y))
				xy = append(append(xy, x...), y...)
				var err error
				kxy[pos], err = complexity(xy)
				return errors.Wrap(err, "")
			})
			idx++
		}
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "")
	}

	mat := make([]float64, 0, len(kxy))
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			mat = append(mat, distance(k[i], k[j], kxy[len(mat)]))
		}
	}
	return mat, nil
}

func readFiles(data []string) ([][]byte, error) {
	contents := make([][]byte, 0, len(data))
	for _, fpath := range data {
		b, err := os.ReadFile(fpath)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		contents = append(contents, b)
	}
	return contents, nil
}

func listFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	data := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		fpath := filepath.Join(dir, f.Name())
		data = append(data, fpath)
	}
	return data, nil
}
