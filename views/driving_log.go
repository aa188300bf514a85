package views

import (
	"time"

	"teleop-logger/models"
)

// RecordIndexer mirrors persisted records somewhere else (the SQLite
// catalog).
type RecordIndexer interface {
	AddRecord(rec models.LogRecord) error
}

// DrivingLog is the persistence sink of the logging worker: one JPEG plus one
// CSV row per sample.
type DrivingLog struct {
	images *ImageStore
	rows   *CSVWriter
	index  RecordIndexer

	now func() time.Time
}

// OpenDrivingLog opens (or creates) the CSV log and the image directory.
func OpenDrivingLog(csvPath, imageDir string) (*DrivingLog, error) {
	images, err := NewImageStore(imageDir)
	if err != nil {
		return nil, err
	}
	rows, err := OpenCSVWriter(csvPath, 0, DrivingLogColumns)
	if err != nil {
		return nil, err
	}
	return &DrivingLog{images: images, rows: rows, now: time.Now}, nil
}

// SetIndex attaches a secondary record index. Call before the log is used.
func (d *DrivingLog) SetIndex(ix RecordIndexer) {
	d.index = ix
}

// Persist saves the frame, then appends the row that references it. The row
// is flushed before returning so a crash loses at most the current sample.
func (d *DrivingLog) Persist(f models.Frame, s models.Sample) (models.LogRecord, error) {
	ts := d.now()
	path, err := d.images.Write(f, ts)
	if err != nil {
		return models.LogRecord{}, err
	}

	rec := models.LogRecord{
		Timestamp:     ts,
		ImagePath:     path,
		SteeringPulse: s.Steer,
		ThrottlePulse: s.Throttle,
	}
	if err := d.rows.WriteRow(rec.CSVRow()); err != nil {
		return rec, err
	}
	if err := d.rows.Flush(); err != nil {
		return rec, err
	}
	if d.index != nil {
		if err := d.index.AddRecord(rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Rows returns how many rows this run appended.
func (d *DrivingLog) Rows() uint64 {
	return d.rows.Rows()
}

// Close flushes and closes the CSV file.
func (d *DrivingLog) Close() error {
	return d.rows.Close()
}
