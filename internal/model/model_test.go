package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRejectsInvalidCalendarDate(t *testing.T) {
	_, err := ParseDate("2024-02-30")
	assert.Error(t, err)

	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)
}

func TestMonthRangeIsHalfOpen(t *testing.T) {
	start, end := MonthRange(2024, time.December)
	assert.Equal(t, "2024-12-01", start.String())
	assert.Equal(t, "2025-01-01", end.String())

	start, end = YearRange(2024)
	assert.Equal(t, "2024-01-01", start.String())
	assert.Equal(t, "2025-01-01", end.String())
}

func TestDateScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-06-15"))
	assert.Equal(t, NewDate(2024, time.June, 15), d)

	require.NoError(t, d.Scan([]byte("2024-06-16 00:00:00")))
	assert.Equal(t, "2024-06-16", d.String())

	require.NoError(t, d.Scan(time.Date(2024, 6, 17, 22, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-17", d.String())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-17", v)

	assert.Error(t, d.Scan(42))
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-06-15"}`), &payload))
	assert.Equal(t, time.Saturday, payload.Date.Weekday())
	assert.Equal(t, "2024-06", payload.Date.YearMonth())
	assert.Equal(t, "20240615", payload.Date.Compact())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-06-15"}`, string(out))
}

func TestRatingScales(t *testing.T) {
	tests := []struct {
		name   string
		scale  RatingScale
		rating float64
		want   bool
	}{
		{"integer five accepts 4", ScaleFiveInteger, 4, true},
		{"integer five rejects 4.5", ScaleFiveInteger, 4.5, false},
		{"half five accepts 4.5", ScaleFiveHalf, 4.5, true},
		{"half five rejects 0.5", ScaleFiveHalf, 0.5, false},
		{"half five rejects 5.5", ScaleFiveHalf, 5.5, false},
		{"half ten accepts 0", ScaleTenHalf, 0, true},
		{"half ten accepts 9.5", ScaleTenHalf, 9.5, true},
		{"half ten rejects 9.7", ScaleTenHalf, 9.7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scale.Contains(tt.rating))
		})
	}
}

func TestRatingScaleCheck(t *testing.T) {
	assert.NoError(t, DefaultRatingScale().Check())
	assert.Error(t, RatingScale{Min: 5, Max: 1, Step: 1}.Check())
	assert.Error(t, RatingScale{Min: 1, Max: 5, Step: 0}.Check())
	assert.Error(t, RatingScale{Min: 0, Max: 1, Step: 0.3}.Check())

	assert.InDelta(t, 4.0, ScaleFiveHalf.LikedThreshold(), 1e-9)
	assert.InDelta(t, 7.5, ScaleTenHalf.LikedThreshold(), 1e-9)
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", PosterURL("https://image.tmdb.org/t/p/w500", "/abc.jpg"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", PosterURL("https://image.tmdb.org/t/p/w500/", "abc.jpg"))
	assert.Empty(t, PosterURL("https://image.tmdb.org/t/p/w500", ""))
}

func TestGenreHelpers(t *testing.T) {
	assert.Equal(t, []int{28, 18}, SplitGenreIDs("28, 18,abc"))
	assert.Nil(t, SplitGenreIDs(""))
	assert.Equal(t, "28,18", JoinGenreIDs([]int{28, 18}))
	assert.Equal(t, []string{"Action", "Drama", UnknownGenre}, GenreNames([]int{28, 18, 1}))
}

func TestMovieDetailsToMovie(t *testing.T) {
	runtime := 148
	d := &MovieDetails{
		ExternalID: 27205,
		Title:      "Inception",
		GenreIDs:   []int{28, 878},
		Actors:     []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page", "Tom Hardy"},
		Runtime:    &runtime,
	}
	m := d.ToMovie()
	assert.Equal(t, UnknownDirector, m.Director)
	assert.Equal(t, "Leonardo DiCaprio, Joseph Gordon-Levitt, Elliot Page", m.Actors)
	assert.Equal(t, "28,878", m.GenreIDs)

	back := DetailsFromMovie(m)
	assert.Equal(t, []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"}, back.Actors)
	assert.Equal(t, []int{28, 878}, back.GenreIDs)
}

func TestRecordViewDecorate(t *testing.T) {
	v := RecordView{ExternalID: 27205, GenreIDs: "28,878", WatchDate: NewDate(2024, time.June, 15)}
	v.Decorate("https://www.themoviedb.org/movie/")

	assert.Equal(t, "2024-06", v.YearMonth)
	assert.Equal(t, "Saturday", v.Weekday)
	assert.Equal(t, []string{"Action", "Science Fiction"}, v.GenreNames)
	assert.Equal(t, "https://www.themoviedb.org/movie/27205", v.WebURL)
}

func TestIsSyntheticLocation(t *testing.T) {
	assert.True(t, IsSyntheticLocation(SyntheticLocationBoxOffice))
	assert.False(t, IsSyntheticLocation("CGV Gangnam"))
}
