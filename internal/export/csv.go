package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/dgallion1/transcriptr/internal/transcript"
)

// WriteCSV writes a header row followed by one row per record. The csv
// struct tags on UnitRecord name the columns.
func WriteCSV(w io.Writer, records []transcript.UnitRecord) error {
	if records == nil {
		records = []transcript.UnitRecord{}
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV reads back a file produced by WriteCSV.
func ReadCSV(r io.Reader) ([]transcript.UnitRecord, error) {
	var records []transcript.UnitRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}
