package workout

import (
	"errors"
	"testing"
	"time"
)

func TestParseWellFormedLine(t *testing.T) {
	rec, err := Parse("16:30 23-05-24;60.02134,60.12345;12.5;4:30;развивающий кросс;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := time.Date(2024, time.May, 23, 16, 30, 0, 0, time.Local)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp, want)
	}
	if rec.Lat != 60.02134 || rec.Lon != 60.12345 {
		t.Errorf("coords = %v,%v", rec.Lat, rec.Lon)
	}
	if rec.DistanceKm != 12.5 {
		t.Errorf("distance = %v", rec.DistanceKm)
	}
	if rec.PaceMin != 4 || rec.PaceSec != 30 {
		t.Errorf("pace = %d:%d", rec.PaceMin, rec.PaceSec)
	}
	if rec.Comment != "развивающий кросс" {
		t.Errorf("comment = %q", rec.Comment)
	}
}

func TestParseFieldErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
		want *Error
	}{
		{"too few fields", "16:30 23-05-24;60.0,60.1;12.5;4:30", ErrBadArgs},
		{"empty line", "", ErrBadArgs},
		{"bad hour", "26:30 23-05-24;60.0,60.1;12.5;4:30;x;", ErrBadDate},
		{"date garbage", "yesterday;60.0,60.1;12.5;4:30;x;", ErrBadDate},
		{"one coordinate", "16:30 23-05-24;60.0;12.5;4:30;x;", ErrBadCoords},
		{"three coordinates", "16:30 23-05-24;60.0,60.1,60.2;12.5;4:30;x;", ErrBadCoords},
		{"coords not numeric", "16:30 23-05-24;here,there;12.5;4:30;x;", ErrBadCoords},
		{"distance not numeric", "16:30 23-05-24;60.0,60.1;far;4:30;x;", ErrBadDist},
		{"pace single token", "16:30 23-05-24;60.0,60.1;12.5;430;x;", ErrBadPace},
		{"pace not numeric", "16:30 23-05-24;60.0,60.1;12.5;four:30;x;", ErrBadPace},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.line)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseAcceptsUncheckedRanges(t *testing.T) {
	rec, err := Parse("08:00 01-01-25;-12.5,200.0;-3.0;4:75;;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.DistanceKm != -3.0 {
		t.Errorf("distance = %v, negative values pass through", rec.DistanceKm)
	}
	if rec.PaceSec != 75 {
		t.Errorf("pace seconds = %d, no 60-bound check", rec.PaceSec)
	}
	if rec.Comment != "" {
		t.Errorf("comment = %q, want empty", rec.Comment)
	}
}

func TestParseCommentPrecedesTail(t *testing.T) {
	rec, err := Parse("16:30 23-05-24;60.0,60.1;12.5;4:30;easy run;ignored tail")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.Comment != "easy run" {
		t.Fatalf("comment = %q, want %q", rec.Comment, "easy run")
	}
}

func TestStoredRoundTrip(t *testing.T) {
	rec, err := Parse("16:30 23-05-24;60.02134,60.12345;12.5;4:30;easy run;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	back, err := DecodeStored(17, rec.StoredTime(), rec.StoredCoords(), rec.StoredDist(), rec.StoredPace(), rec.Comment)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.ID != 17 {
		t.Errorf("id = %d", back.ID)
	}
	if !back.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("timestamp = %v, want %v", back.Timestamp, rec.Timestamp)
	}
	if back.Lat != rec.Lat || back.Lon != rec.Lon || back.DistanceKm != rec.DistanceKm {
		t.Errorf("numeric fields changed: %+v vs %+v", back, rec)
	}
	if back.PaceMin != rec.PaceMin || back.PaceSec != rec.PaceSec || back.Comment != rec.Comment {
		t.Errorf("pace/comment changed: %+v vs %+v", back, rec)
	}
}

func TestFormatLine(t *testing.T) {
	rec, err := Parse("16:30 23-05-24;60.5,61.25;12.5;4:30;кросс;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec.ID = 42
	got := FormatLine(rec)
	want := "id: 42, дата и время: 2024-05-23 16:30:00, координаты: 60.5;61.25, расстояние (км): 12.5, темп: 4:30, комментарий: кросс"
	if got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}
