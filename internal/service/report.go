package service

import (
	"context"
	"time"

	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/stats"
)

const (
	yearlyTopRated = 10
	yearlyGenres   = 8
)

// PeriodLister 报表所需的记录查询
type PeriodLister interface {
	RecordLister
	RecordsInPeriod(ctx context.Context, start, end model.Date) ([]*model.RecordView, error)
}

// MonthlyReport 月度报表
type MonthlyReport struct {
	Year    int                 `json:"year"`
	Month   int                 `json:"month"`
	Summary stats.Summary       `json:"summary"`
	Genres  []stats.Count       `json:"genres"`
	Records []*model.RecordView `json:"records"`
}

// YearlyReport 年度报表
type YearlyReport struct {
	Year          int                 `json:"year"`
	Summary       stats.Summary       `json:"summary"`
	FavoriteGenre string              `json:"favorite_genre"`
	MonthlyTrend  []stats.MonthCount  `json:"monthly_trend"`
	TopRated      []*model.RecordView `json:"top_rated"`
	Genres        []stats.Count       `json:"genres"`
}

// Overview 全部记录的统计
type Overview struct {
	Summary    stats.Summary `json:"summary"`
	Genres     []stats.Count `json:"genres"`
	Directors  []stats.Count `json:"directors"`
	Locations  []stats.Count `json:"locations"`
	Categories []stats.Count `json:"categories"`
	Weekdays   []stats.Count `json:"weekdays"`
}

// ReportService 报表
type ReportService struct {
	records PeriodLister
	topN    int
}

func NewReportService(records PeriodLister, topN int) *ReportService {
	if topN <= 0 {
		topN = 10
	}
	return &ReportService{records: records, topN: topN}
}

// Monthly 某月 [1日, 次月1日) 的报表
func (s *ReportService) Monthly(ctx context.Context, year, month int) (*MonthlyReport, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, apperr.Validation("report.monthly", "month must be between 1 and 12, got %d", month)
	}
	start, end := model.MonthRange(year, time.Month(month))
	records, err := s.records.RecordsInPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &MonthlyReport{
		Year:    year,
		Month:   month,
		Summary: stats.PeriodSummary(records),
		Genres:  stats.GenreFrequency(records, s.topN),
		Records: records,
	}, nil
}

// Yearly 年度报表
func (s *ReportService) Yearly(ctx context.Context, year int) (*YearlyReport, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	start, end := model.YearRange(year)
	records, err := s.records.RecordsInPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &YearlyReport{
		Year:          year,
		Summary:       stats.PeriodSummary(records),
		FavoriteGenre: stats.FavoriteGenre(records),
		MonthlyTrend:  stats.MonthlyTrend(records, year),
		TopRated:      stats.TopRated(records, yearlyTopRated),
		Genres:        stats.GenreFrequency(records, yearlyGenres),
	}, nil
}

// Overview 全部记录的统计：类型、导演（排除未知）、地点（排除自动写入）、星期
func (s *ReportService) Overview(ctx context.Context) (*Overview, error) {
	records, err := s.records.Records(ctx, RecordFilter{})
	if err != nil {
		return nil, err
	}
	return &Overview{
		Summary:    stats.PeriodSummary(records),
		Genres:     stats.GenreFrequency(records, s.topN),
		Directors:  stats.DirectorFrequency(records, s.topN, true),
		Locations:  stats.LocationFrequency(records, s.topN, true),
		Categories: stats.CategoryFrequency(records),
		Weekdays:   stats.WeekdayFrequency(records),
	}, nil
}

func checkYear(year int) error {
	if year < 1900 || year > 9999 {
		return apperr.Validation("report", "year %d is out of range", year)
	}
	return nil
}
