// Package workout holds the planned-workout record model, its line parser,
// and the text encodings shared between user input, storage, and listing
// output.
package workout

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxID bounds the record identifier space; ids live in [1, MaxID].
	MaxID = 31000

	// InputTimeLayout is the timestamp format of user input:
	// 24-hour clock, 2-digit year.
	InputTimeLayout = "15:04 02-01-06"
	// StoreTimeLayout is the stored timestamp format. Lexicographic order
	// of stored values matches chronological order, which the listing
	// query relies on.
	StoreTimeLayout = "2006-01-02 15:04:05"
)

// Record is one planned workout.
type Record struct {
	ID         int
	Timestamp  time.Time
	Lat        float64
	Lon        float64
	DistanceKm float64
	PaceMin    int
	PaceSec    int
	Comment    string
}

// StoredTime encodes the timestamp for the datetime column.
func (r *Record) StoredTime() string { return r.Timestamp.Format(StoreTimeLayout) }

// StoredCoords encodes latitude and longitude for the coords column.
func (r *Record) StoredCoords() string {
	return formatFloat(r.Lat) + ";" + formatFloat(r.Lon)
}

// StoredDist encodes the distance for the dist column.
func (r *Record) StoredDist() string { return formatFloat(r.DistanceKm) }

// StoredPace encodes the per-kilometer pace for the veloc column.
func (r *Record) StoredPace() string {
	return strconv.Itoa(r.PaceMin) + ":" + strconv.Itoa(r.PaceSec)
}

// DecodeStored rebuilds a Record from its column values.
func DecodeStored(id int, datetime, coords, dist, veloc, comment string) (*Record, error) {
	ts, err := time.ParseInLocation(StoreTimeLayout, datetime, time.Local)
	if err != nil {
		return nil, fmt.Errorf("decode datetime %q: %w", datetime, err)
	}
	latlon := strings.Split(coords, ";")
	if len(latlon) != 2 {
		return nil, fmt.Errorf("decode coords %q: want lat;lon", coords)
	}
	lat, err := strconv.ParseFloat(latlon[0], 64)
	if err != nil {
		return nil, fmt.Errorf("decode coords %q: %w", coords, err)
	}
	lon, err := strconv.ParseFloat(latlon[1], 64)
	if err != nil {
		return nil, fmt.Errorf("decode coords %q: %w", coords, err)
	}
	d, err := strconv.ParseFloat(dist, 64)
	if err != nil {
		return nil, fmt.Errorf("decode dist %q: %w", dist, err)
	}
	pace := strings.Split(veloc, ":")
	if len(pace) != 2 {
		return nil, fmt.Errorf("decode veloc %q: want min:sec", veloc)
	}
	paceMin, err := strconv.Atoi(pace[0])
	if err != nil {
		return nil, fmt.Errorf("decode veloc %q: %w", veloc, err)
	}
	paceSec, err := strconv.Atoi(pace[1])
	if err != nil {
		return nil, fmt.Errorf("decode veloc %q: %w", veloc, err)
	}
	return &Record{
		ID:         id,
		Timestamp:  ts,
		Lat:        lat,
		Lon:        lon,
		DistanceKm: d,
		PaceMin:    paceMin,
		PaceSec:    paceSec,
		Comment:    comment,
	}, nil
}

// FormatLine renders the one-line listing representation of a record.
func FormatLine(r *Record) string {
	return fmt.Sprintf("id: %d, дата и время: %s, координаты: %s, расстояние (км): %s, темп: %s, комментарий: %s",
		r.ID, r.StoredTime(), r.StoredCoords(), r.StoredDist(), r.StoredPace(), r.Comment)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
