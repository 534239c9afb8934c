package workout

import (
	"strconv"
	"strings"
	"time"
)

// Parse turns a semicolon-delimited workout line into a Record.
//
// Expected field order: timestamp; coordinates; distance; pace; comment;
// A terminal ";" produces an empty trailing field which counts towards the
// required length, so a line ending in the comment followed by ";" is the
// canonical form. Fields are parse-validated only: negative distances and
// pace seconds >= 60 are accepted as-is.
func Parse(line string) (*Record, error) {
	fields := strings.Split(line, ";")
	if len(fields) < 6 {
		return nil, ErrBadArgs
	}

	ts, err := time.ParseInLocation(InputTimeLayout, fields[0], time.Local)
	if err != nil {
		return nil, ErrBadDate
	}

	latlon := strings.Split(fields[1], ",")
	if len(latlon) != 2 {
		return nil, ErrBadCoords
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latlon[0]), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(latlon[1]), 64)
	if latErr != nil || lonErr != nil {
		return nil, ErrBadCoords
	}

	dist, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return nil, ErrBadDist
	}

	pace := strings.Split(fields[3], ":")
	if len(pace) != 2 {
		return nil, ErrBadPace
	}
	paceMin, minErr := strconv.Atoi(strings.TrimSpace(pace[0]))
	paceSec, secErr := strconv.Atoi(strings.TrimSpace(pace[1]))
	if minErr != nil || secErr != nil {
		return nil, ErrBadPace
	}

	// The comment sits right before the empty field produced by the
	// terminal ";"; everything past it is ignored.
	return &Record{
		Timestamp:  ts,
		Lat:        lat,
		Lon:        lon,
		DistanceKm: dist,
		PaceMin:    paceMin,
		PaceSec:    paceSec,
		Comment:    fields[len(fields)-2],
	}, nil
}
