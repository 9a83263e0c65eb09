// Package stats 观影记录的统计聚合。
//
// 所有函数都是纯函数，输入为已联表的记录，空输入返回空结果；
// 平均分、最高分与最佳影片在没有记录时为 nil，调用方需要先看 Count。
package stats

import (
	"sort"
	"time"

	"github.com/user/movielog/internal/model"
)

// Count 频次表中的一项
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MonthCount 月度趋势中的一项
type MonthCount struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

// Summary 区间汇总
type Summary struct {
	Count               int      `json:"count"`
	AverageRating       *float64 `json:"average_rating"`
	MaxRating           *float64 `json:"max_rating"`
	BestTitle           *string  `json:"best_title"`
	TotalRuntimeMinutes int      `json:"total_runtime_minutes"`
}

// weekdayOrder 周一到周日
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// GenreFrequency 类型出现次数，topN <= 0 表示不截断
func GenreFrequency(records []*model.RecordView, topN int) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		names := r.GenreNames
		if names == nil {
			names = model.GenreNames(model.SplitGenreIDs(r.GenreIDs))
		}
		for _, name := range names {
			counts[name]++
		}
	}
	return rank(counts, topN)
}

// DirectorFrequency 导演出现次数，excludeSentinel 时排除未知导演
func DirectorFrequency(records []*model.RecordView, topN int, excludeSentinel bool) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Director == "" || (excludeSentinel && r.Director == model.UnknownDirector) {
			continue
		}
		counts[r.Director]++
	}
	return rank(counts, topN)
}

// LocationFrequency 地点出现次数，excludeSynthetic 时排除自动导入写入的地点
func LocationFrequency(records []*model.RecordView, topN int, excludeSynthetic bool) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.LocationDetail == "" || (excludeSynthetic && model.IsSyntheticLocation(r.LocationDetail)) {
			continue
		}
		counts[r.LocationDetail]++
	}
	return rank(counts, topN)
}

// CategoryFrequency 观影方式分布
func CategoryFrequency(records []*model.RecordView) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.LocationCategory != "" {
			counts[string(r.LocationCategory)]++
		}
	}
	return rank(counts, 0)
}

// WeekdayFrequency 周一到周日固定 7 项，无记录的天为 0
func WeekdayFrequency(records []*model.RecordView) []Count {
	counts := make(map[time.Weekday]int, 7)
	for _, r := range records {
		counts[r.WatchDate.Weekday()]++
	}
	out := make([]Count, 0, len(weekdayOrder))
	for _, d := range weekdayOrder {
		out = append(out, Count{Key: d.String(), Count: counts[d]})
	}
	return out
}

// PeriodSummary 数量、平均分、最高分、最佳影片（最高分中最先出现的一部）与总片长
func PeriodSummary(records []*model.RecordView) Summary {
	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}

	var sum float64
	best := records[0]
	for _, r := range records {
		sum += r.Rating
		if r.Rating > best.Rating {
			best = r
		}
		if r.Runtime != nil {
			s.TotalRuntimeMinutes += *r.Runtime
		}
	}
	avg := sum / float64(len(records))
	maxRating := best.Rating
	title := best.Title
	s.AverageRating = &avg
	s.MaxRating = &maxRating
	s.BestTitle = &title
	return s
}

// MonthlyTrend 某年 1–12 月每月记录数，其他年份的记录忽略
func MonthlyTrend(records []*model.RecordView, year int) []MonthCount {
	var counts [12]int
	for _, r := range records {
		if r.WatchDate.Year == year && r.WatchDate.Month >= time.January && r.WatchDate.Month <= time.December {
			counts[r.WatchDate.Month-1]++
		}
	}
	out := make([]MonthCount, 12)
	for i := range out {
		out[i] = MonthCount{Month: i + 1, Count: counts[i]}
	}
	return out
}

// TopRated 评分最高的 n 条，同分按观影日期倒序
func TopRated(records []*model.RecordView, n int) []*model.RecordView {
	sorted := make([]*model.RecordView, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating > sorted[j].Rating
		}
		return sorted[i].WatchDate.After(sorted[j].WatchDate)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FavoriteGenre 出现最多的类型，没有记录时为空字符串
func FavoriteGenre(records []*model.RecordView) string {
	top := GenreFrequency(records, 1)
	if len(top) == 0 {
		return ""
	}
	return top[0].Key
}

// rank 按次数降序，同次数按键字母序
func rank(counts map[string]int, topN int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
