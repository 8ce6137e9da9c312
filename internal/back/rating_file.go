package back

import (
	"eloladder/internal/elo"
	"eloladder/internal/util"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// RatingsCSVHeader is the first row of the CSV ratings file.
var RatingsCSVHeader = []string{"Player", "Rating"} // nolint:gochecknoglobals

// JSONRatingFile persists ratings as a JSON object, it is exact.
type JSONRatingFile struct {
	Path string
}

func (f JSONRatingFile) Source() string {
	return f.Path
}

func (f JSONRatingFile) Load() (map[string]float64, error) {
	r, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, err
	}
	defer r.Close()

	var ret map[string]float64
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ret); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after the JSON object")
	}
	if ret == nil {
		return nil, errors.New("expected a JSON object")
	}

	return ret, nil
}

func (f JSONRatingFile) Save(ratings map[string]float64) error {
	return writeFileAtomic(f.Path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(ratings)
	})
}

// CSVRatingFile persists ratings as a two-column CSV, ratings are rounded to
// two decimals.
type CSVRatingFile struct {
	Path string
}

func (f CSVRatingFile) Source() string {
	return f.Path
}

func (f CSVRatingFile) Load() (map[string]float64, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(RatingsCSVHeader)

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("missing header")
	}
	if err != nil {
		return nil, err
	}
	if err := checkHeader(header, RatingsCSVHeader); err != nil {
		return nil, err
	}

	ret := map[string]float64{}
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rating, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ret[row[0]] = rating
	}

	return ret, nil
}

func (f CSVRatingFile) Save(ratings map[string]float64) error {
	names := make([]string, 0, len(ratings))
	for k := range ratings {
		names = append(names, k)
	}
	sort.Strings(names)

	return writeFileAtomic(f.Path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(RatingsCSVHeader); err != nil {
			return err
		}

		for _, name := range names {
			rating := util.FormatFloat(elo.Round2(ratings[name]))
			if err := cw.Write([]string{name, rating}); err != nil {
				return err
			}
		}

		cw.Flush()
		return cw.Error()
	})
}

// writeFileAtomic writes to a temporary file next to path and renames it over
// path once complete, a crash never leaves a truncated file behind.
func writeFileAtomic(path string, cb func(io.Writer) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := ioutil.TempFile(dir, base+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := f.Name()

	if err := cb(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}
