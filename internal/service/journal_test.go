package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/repository"
)

type mockDetails struct {
	mock.Mock
}

func (m *mockDetails) FetchDetails(ctx context.Context, externalID int) (*model.MovieDetails, error) {
	args := m.Called(ctx, externalID)
	d, _ := args.Get(0).(*model.MovieDetails)
	return d, args.Error(1)
}

func newTestJournal(t *testing.T, details DetailsSource) (*Journal, *repository.Repositories) {
	t.Helper()
	db, err := repository.InitDB("sqlite", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	repos := repository.NewRepositories(db)
	t.Cleanup(func() { _ = repos.Close() })
	j := NewJournal(repos, details, JournalOptions{
		RatingScale: model.ScaleFiveHalf,
		WebURL:      "https://www.themoviedb.org/movie/",
	})
	return j, repos
}

func inceptionDetails() *model.MovieDetails {
	runtime := 148
	return &model.MovieDetails{
		ExternalID: 27205,
		Title:      "Inception",
		GenreIDs:   []int{28, 878},
		Director:   "Christopher Nolan",
		Actors:     []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"},
		Runtime:    &runtime,
	}
}

func parasiteDetails() *model.MovieDetails {
	return &model.MovieDetails{
		ExternalID: 496243,
		Title:      "Parasite",
		GenreIDs:   []int{35, 53, 18},
		Director:   "Bong Joon-ho",
		Actors:     []string{"Song Kang-ho", "Lee Sun-kyun", "Cho Yeo-jeong"},
	}
}

func june(day int) model.Date {
	return model.NewDate(2024, time.June, day)
}

func TestRecordWatchClassifiesLocation(t *testing.T) {
	j, _ := newTestJournal(t, nil)
	ctx := context.Background()

	res, err := j.RecordWatch(ctx, inceptionDetails(), RecordInput{
		WatchDate: june(15), Rating: 4.5, Review: " great ", Location: " CGV 용산 ",
	})
	require.NoError(t, err)
	assert.NotZero(t, res.RecordID)

	views, err := j.Records(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, model.LocationTheater, views[0].LocationCategory)
	assert.Equal(t, "CGV 용산", views[0].LocationDetail)
	assert.Equal(t, "great", views[0].Review)
	assert.Equal(t, "https://www.themoviedb.org/movie/27205", views[0].WebURL)
}

func TestRecordWatchValidation(t *testing.T) {
	j, repos := newTestJournal(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RecordInput
	}{
		{"missing date", RecordInput{Rating: 4, Location: "CGV"}},
		{"missing location", RecordInput{WatchDate: june(1), Rating: 4, Location: ""}},
		{"rating above scale", RecordInput{WatchDate: june(1), Rating: 5.5, Location: "CGV"}},
		{"rating off step", RecordInput{WatchDate: june(1), Rating: 3.3, Location: "CGV"}},
		{"rating below scale", RecordInput{WatchDate: june(1), Rating: 0, Location: "CGV"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.RecordWatch(ctx, inceptionDetails(), tt.in)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}

	_, err := j.RecordWatch(ctx, inceptionDetails(), RecordInput{WatchDate: june(1), Rating: 3.3, Location: "CGV"})
	assert.Contains(t, err.Error(), "rating 3.3 is outside 1..5 (step 0.5)")

	// 校验失败时不写入任何数据
	count, err := repos.Movie.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordWatchDuplicateIsSoft(t *testing.T) {
	j, _ := newTestJournal(t, nil)
	ctx := context.Background()
	in := RecordInput{WatchDate: june(15), Rating: 4, Location: "Netflix"}

	_, err := j.RecordWatch(ctx, inceptionDetails(), in)
	require.NoError(t, err)
	_, err = j.RecordWatch(ctx, inceptionDetails(), in)
	assert.True(t, errors.Is(err, apperr.ErrDuplicate))

	views, err := j.Records(ctx, RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestRecordWatchByIDUsesCacheBeforeProvider(t *testing.T) {
	details := &mockDetails{}
	details.On("FetchDetails", mock.Anything, 27205).Return(inceptionDetails(), nil).Once()
	details.On("FetchDetails", mock.Anything, 1).Return(nil, apperr.Provider("tmdb.details", errors.New("down")))
	j, _ := newTestJournal(t, details)
	ctx := context.Background()

	_, err := j.RecordWatchByID(ctx, 27205, RecordInput{WatchDate: june(1), Rating: 4, Location: "CGV"})
	require.NoError(t, err)
	_, err = j.RecordWatchByID(ctx, 27205, RecordInput{WatchDate: june(2), Rating: 4, Location: "CGV"})
	require.NoError(t, err)
	details.AssertNumberOfCalls(t, "FetchDetails", 1)

	_, err = j.RecordWatchByID(ctx, 1, RecordInput{WatchDate: june(2), Rating: 4, Location: "CGV"})
	assert.True(t, apperr.IsKind(err, apperr.KindProvider))
}

func TestPromoteWishlist(t *testing.T) {
	details := &mockDetails{}
	details.On("FetchDetails", mock.Anything, 496243).Return(parasiteDetails(), nil)
	j, _ := newTestJournal(t, details)
	ctx := context.Background()

	id, err := j.AddToWishlist(ctx, WishlistInput{ExternalID: 496243, AddedDate: june(1), Notes: "with friends"})
	require.NoError(t, err)

	_, err = j.AddToWishlist(ctx, WishlistInput{ExternalID: 496243})
	assert.True(t, apperr.IsKind(err, apperr.KindDuplicate))

	res, err := j.PromoteWishlist(ctx, id, RecordInput{WatchDate: june(10), Rating: 5, Location: "Netflix"})
	require.NoError(t, err)
	assert.True(t, res.WishlistConsumed)

	entries, err := j.Wishlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = j.PromoteWishlist(ctx, id, RecordInput{WatchDate: june(11), Rating: 5, Location: "Netflix"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPromoteWishlistEntryRemovedMidway(t *testing.T) {
	details := &mockDetails{}
	details.On("FetchDetails", mock.Anything, 496243).Return(parasiteDetails(), nil)
	j, repos := newTestJournal(t, details)
	ctx := context.Background()

	id, err := j.AddToWishlist(ctx, WishlistInput{ExternalID: 496243, AddedDate: june(1)})
	require.NoError(t, err)
	entry, err := repos.Wishlist.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, entry)

	// 查找之后、写入之前条目被另一个请求删除
	require.NoError(t, j.RemoveFromWishlist(ctx, id))

	res, err := j.promote(ctx, entry, RecordInput{WatchDate: june(10), Rating: 5, Location: "Netflix"})
	require.NoError(t, err)
	assert.NotZero(t, res.RecordID)
	assert.False(t, res.WishlistConsumed)

	views, err := j.Records(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Parasite", views[0].Title)
}

func TestPromoteWishlistDuplicateKeepsEntry(t *testing.T) {
	details := &mockDetails{}
	details.On("FetchDetails", mock.Anything, 496243).Return(parasiteDetails(), nil)
	j, _ := newTestJournal(t, details)
	ctx := context.Background()

	in := RecordInput{WatchDate: june(10), Rating: 5, Location: "Netflix"}
	_, err := j.RecordWatch(ctx, parasiteDetails(), in)
	require.NoError(t, err)

	id, err := j.AddToWishlist(ctx, WishlistInput{ExternalID: 496243, AddedDate: june(12)})
	require.NoError(t, err)

	_, err = j.PromoteWishlist(ctx, id, in)
	assert.True(t, apperr.IsKind(err, apperr.KindDuplicate))

	entries, err := j.Wishlist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
}

func TestQuickRecordFromRanking(t *testing.T) {
	details := &mockDetails{}
	details.On("FetchDetails", mock.Anything, 27205).Return(inceptionDetails(), nil)
	j, _ := newTestJournal(t, details)
	ctx := context.Background()

	_, err := j.QuickRecordFromRanking(ctx, QuickRecordInput{ExternalID: 27205, Rating: 3})
	require.NoError(t, err)

	views, err := j.Records(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, model.Today(), views[0].WatchDate)
	assert.Equal(t, model.SyntheticLocationBoxOffice, views[0].LocationDetail)
	assert.Equal(t, model.LocationOther, views[0].LocationCategory)

	locations, err := j.RecentLocations(ctx, repository.LocationQuery{RankByFrequency: true})
	require.NoError(t, err)
	assert.Empty(t, locations)

	_, err = j.QuickRecordFromRanking(ctx, QuickRecordInput{ExternalID: 27205, Rating: 9})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateReviewAndDeleteRecord(t *testing.T) {
	j, _ := newTestJournal(t, nil)
	ctx := context.Background()

	res, err := j.RecordWatch(ctx, inceptionDetails(), RecordInput{WatchDate: june(1), Rating: 4, Location: "CGV"})
	require.NoError(t, err)

	require.NoError(t, j.UpdateReview(ctx, res.RecordID, "  changed  "))
	views, err := j.Records(ctx, RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, "changed", views[0].Review)

	assert.True(t, apperr.IsKind(j.UpdateReview(ctx, 12345, "x"), apperr.KindNotFound))

	require.NoError(t, j.DeleteRecord(ctx, res.RecordID))
	assert.True(t, apperr.IsKind(j.DeleteRecord(ctx, res.RecordID), apperr.KindNotFound))
}

func TestRecordsFilter(t *testing.T) {
	j, _ := newTestJournal(t, nil)
	ctx := context.Background()

	_, err := j.RecordWatch(ctx, inceptionDetails(), RecordInput{WatchDate: june(1), Rating: 4, Location: "CGV"})
	require.NoError(t, err)
	_, err = j.RecordWatch(ctx, parasiteDetails(), RecordInput{WatchDate: june(2), Rating: 5, Location: "Netflix"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter RecordFilter
		want   []string
	}{
		{"no filter", RecordFilter{}, []string{"Parasite", "Inception"}},
		{"title substring", RecordFilter{Title: "INCEP"}, []string{"Inception"}},
		{"genre", RecordFilter{Genres: []string{"drama", "Western"}}, []string{"Parasite"}},
		{"director", RecordFilter{Directors: []string{"Christopher Nolan"}}, []string{"Inception"}},
		{"actor", RecordFilter{Actors: []string{"Song Kang-ho"}}, []string{"Parasite"}},
		{"combined", RecordFilter{Title: "para", Directors: []string{"Christopher Nolan"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := j.Records(ctx, tt.filter)
			require.NoError(t, err)
			titles := []string{}
			for _, v := range views {
				titles = append(titles, v.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestRecordsInPeriodValidatesRange(t *testing.T) {
	j, _ := newTestJournal(t, nil)
	_, err := j.RecordsInPeriod(context.Background(), june(10), june(1))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
