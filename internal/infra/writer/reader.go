package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"tube-digest/internal/domain/entity"
)

// ReadDay loads the records from the given day partition. A missing
// partition means no updates for that day and returns an empty slice.
func ReadDay(path string) ([]entity.VideoRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(columns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if len(header) != len(columns) {
		return nil, fmt.Errorf("unexpected column count in %s: %d", path, len(header))
	}

	var records []entity.VideoRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row of %s: %w", path, err)
		}
		records = append(records, entity.VideoRecord{
			Published:    row[0],
			SourceTitle:  row[1],
			SourceID:     row[2],
			Title:        row[3],
			URL:          row[4],
			ItemID:       row[5],
			Description:  row[6],
			ViewCount:    row[7],
			LikeCount:    row[8],
			CommentCount: row[9],
			Duration:     row[10],
		})
	}
	return records, nil
}

// ReadDay loads the records of the day partition for the given instant,
// resolved against the writer's timezone.
func (w *CSVWriter) ReadDay(t time.Time) ([]entity.VideoRecord, error) {
	return ReadDay(w.DayPath(t))
}
