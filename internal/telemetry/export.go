package telemetry

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"seq", "lat", "lon", "temp", "humidity", "time", "origin", "location"}

// WriteCSV writes the table with a header row, one line per reading.
func WriteCSV(w io.Writer, rows []Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Seq),
			strconv.FormatFloat(r.Latitude, 'f', 6, 64),
			strconv.FormatFloat(r.Longitude, 'f', 6, 64),
			strconv.FormatFloat(r.Temperature, 'f', 2, 64),
			strconv.FormatFloat(r.Humidity, 'f', 2, 64),
			r.Time.UTC().Format(time.RFC3339Nano),
			string(r.Origin),
			r.Location,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
