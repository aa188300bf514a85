package views

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teleop-logger/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriterHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "driving_log.csv")

	w, err := OpenCSVWriter(path, 0, DrivingLogColumns)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"1.000000", "images/a.jpg", "375", "307"}))
	require.NoError(t, w.Close())

	w, err = OpenCSVWriter(path, 0, DrivingLogColumns)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"2.000000", "images/b.jpg", "150", "410"}))
	assert.Equal(t, uint64(1), w.Rows())
	require.NoError(t, w.Close())

	want := [][]string{
		{"timestamp", "image_path", "steering_pulse", "throttle_pulse"},
		{"1.000000", "images/a.jpg", "375", "307"},
		{"2.000000", "images/b.jpg", "150", "410"},
	}
	if diff := cmp.Diff(want, readCSV(t, path)); diff != "" {
		t.Errorf("csv contents mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVWriterEmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	w, err := OpenCSVWriter(path, 0, DrivingLogColumns)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, [][]string{DrivingLogColumns}, readCSV(t, path))
}

func TestCSVWriterRejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

	_, err := OpenCSVWriter(path, 0, DrivingLogColumns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeaderMismatch))
}

type recordingIndex struct {
	recs []models.LogRecord
	err  error
}

func (r *recordingIndex) AddRecord(rec models.LogRecord) error {
	if r.err != nil {
		return r.err
	}
	r.recs = append(r.recs, rec)
	return nil
}

func TestDrivingLogPersist(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "driving_log.csv")
	imgDir := filepath.Join(dir, "images")

	dl, err := OpenDrivingLog(csvPath, imgDir)
	require.NoError(t, err)
	ts := time.Unix(1700000000, 123456000)
	dl.now = func() time.Time { return ts }
	ix := &recordingIndex{}
	dl.SetIndex(ix)

	frame := models.Frame{Seq: 4, Data: []byte{0xFF, 0xD8, 0x01, 0x02}}
	rec, err := dl.Persist(frame, models.NewSample(375, 410))
	require.NoError(t, err)
	require.NoError(t, dl.Close())

	wantPath := filepath.Join(imgDir, "1700000000123456000.jpg")
	assert.Equal(t, models.LogRecord{Timestamp: ts, ImagePath: wantPath, SteeringPulse: 375, ThrottlePulse: 410}, rec)

	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, frame.Data, data)

	rows := readCSV(t, csvPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1700000000.123456", wantPath, "375", "410"}, rows[1])
	assert.Equal(t, []models.LogRecord{rec}, ix.recs)
	assert.Equal(t, uint64(1), dl.Rows())
}

func TestDrivingLogRejectsEmptyFrame(t *testing.T) {
	dir := t.TempDir()
	dl, err := OpenDrivingLog(filepath.Join(dir, "log.csv"), filepath.Join(dir, "images"))
	require.NoError(t, err)
	defer dl.Close()

	_, err = dl.Persist(models.Frame{}, models.NewSample(1, 2))
	assert.Error(t, err)
	assert.Zero(t, dl.Rows())
}
