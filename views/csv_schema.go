package views

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"teleop-logger/models"
)

// DrivingLogColumns is the column layout of the driving log. The training
// pipeline reads these names, so they must not change between runs.
var DrivingLogColumns = models.LogRecord{}.CSVHeader()

// ErrHeaderMismatch is returned when an existing CSV file was written with
// a different column layout.
var ErrHeaderMismatch = errors.New("csv header mismatch")

// CheckHeader inspects the first row of an existing CSV file. It returns
// true when the file is missing or empty (a header must be written), false
// when the existing header equals want, and ErrHeaderMismatch otherwise.
func CheckHeader(path string, want []string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("csv open %s: %w", path, err)
	}
	defer f.Close()

	got, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("csv read header %s: %w", path, err)
	}
	if !slices.Equal(got, want) {
		return false, fmt.Errorf("%w in %s: have %v, want %v", ErrHeaderMismatch, path, got, want)
	}
	return false, nil
}
