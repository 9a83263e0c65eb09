package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
)

func seedReportJournal(t *testing.T) *Journal {
	t.Helper()
	j, _ := newTestJournal(t, nil)
	ctx := context.Background()

	add := func(d *model.MovieDetails, date model.Date, rating float64, location string) {
		_, err := j.RecordWatch(ctx, d, RecordInput{WatchDate: date, Rating: rating, Location: location})
		require.NoError(t, err)
	}
	add(inceptionDetails(), model.NewDate(2024, time.May, 31), 4, "CGV")
	add(parasiteDetails(), model.NewDate(2024, time.June, 1), 5, "Netflix")
	add(inceptionDetails(), model.NewDate(2024, time.June, 30), 3.5, "CGV")
	add(parasiteDetails(), model.NewDate(2023, time.December, 31), 4.5, "Watcha")
	return j
}

func TestMonthlyReport(t *testing.T) {
	reports := NewReportService(seedReportJournal(t), 5)

	r, err := reports.Monthly(context.Background(), 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Summary.Count)
	require.NotNil(t, r.Summary.BestTitle)
	assert.Equal(t, "Parasite", *r.Summary.BestTitle)
	assert.Equal(t, 148, r.Summary.TotalRuntimeMinutes)
	require.Len(t, r.Records, 2)
	assert.Equal(t, "2024-06-30", r.Records[0].WatchDate.String())

	empty, err := reports.Monthly(context.Background(), 2024, 2)
	require.NoError(t, err)
	assert.Zero(t, empty.Summary.Count)
	assert.Nil(t, empty.Summary.AverageRating)

	_, err = reports.Monthly(context.Background(), 2024, 13)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestYearlyReport(t *testing.T) {
	reports := NewReportService(seedReportJournal(t), 5)

	r, err := reports.Yearly(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Summary.Count)
	assert.Equal(t, 2*148, r.Summary.TotalRuntimeMinutes)
	require.Len(t, r.MonthlyTrend, 12)
	assert.Equal(t, 1, r.MonthlyTrend[4].Count)
	assert.Equal(t, 2, r.MonthlyTrend[5].Count)
	require.NotEmpty(t, r.TopRated)
	assert.Equal(t, "Parasite", r.TopRated[0].Title)
	assert.NotEmpty(t, r.FavoriteGenre)
}

func TestOverview(t *testing.T) {
	reports := NewReportService(seedReportJournal(t), 5)

	o, err := reports.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, o.Summary.Count)
	require.Len(t, o.Weekdays, 7)
	require.NotEmpty(t, o.Locations)
	assert.Equal(t, "CGV", o.Locations[0].Key)
	assert.Equal(t, 2, o.Locations[0].Count)
	assert.Len(t, o.Directors, 2)
}
