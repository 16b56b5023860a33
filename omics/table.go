package omics

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
)

/*
Table is one omics modality matrix with a row per molecular feature and
a column per sample.
*/
type Table struct {
	Name     string   // modality tag, used in error messages
	Features []string // row identifiers
	Samples  []string // column identifiers
	M        *mat.Dense
}

/*
ReadTable parses a tab-separated table with a header row of sample
identifiers and a first column of feature identifiers. Tables with the
.xz suffix are decompressed on the fly.
*/
func ReadTable(name, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open table `%v`: %v", path, err.Error())
	}
	defer f.Close()
	var rd io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".xz") {
		if rd, err = xz.NewReader(rd); err != nil {
			return nil, zorros.Wrapf(err, "failed to decompress table `%v`: %v", path, err.Error())
		}
	}
	return parseTable(name, path, rd)
}

func parseTable(name, path string, rd io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	if !scanner.Scan() {
		return nil, zorros.Errorf("table `%v` is empty", path)
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
	t := &Table{Name: name}
	var values []float64
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(t.Samples) == 0 {
			// the header may or may not carry a cell over the feature column
			if len(header) == len(fields) {
				t.Samples = header[1:]
			} else if len(header) == len(fields)-1 {
				t.Samples = header
			} else {
				return nil, zorros.Errorf("table `%v` header has %v columns, rows have %v", path, len(header), len(fields))
			}
		}
		if len(fields) != len(t.Samples)+1 {
			return nil, zorros.Errorf("table `%v` row `%v` has %v columns, expected %v", path, fields[0], len(fields)-1, len(t.Samples))
		}
		t.Features = append(t.Features, fields[0])
		for _, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, zorros.Wrapf(err, "table `%v` row `%v`: %v", path, fields[0], err.Error())
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, zorros.Wrapf(err, "failed to read table `%v`: %v", path, err.Error())
	}
	if len(t.Features) == 0 {
		return nil, zorros.Errorf("table `%v` has no feature rows", path)
	}
	t.M = mat.NewDense(len(t.Features), len(t.Samples), values)
	return t, nil
}

/*
LoadModality reads the conventionally named table of one modality,
<dir>/<letter>.tsv, falling back to the xz-compressed variant.
*/
func LoadModality(dir, letter string) (*Table, error) {
	path := filepath.Join(dir, letter+".tsv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, err = os.Stat(path + ".xz"); err == nil {
			path += ".xz"
		}
	}
	return ReadTable(letter, path)
}
