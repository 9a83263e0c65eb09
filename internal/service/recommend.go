package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/user/movielog/internal/logging"
	"github.com/user/movielog/internal/model"
)

const (
	preferredGenreCount    = 3
	preferredDirectorCount = 3
	// discoverGenreCount 只用前两个偏好类型去发现
	discoverGenreCount = 2
	perGenreCandidates = 3
	// popularPadBelow 候选少于该数量时用热门补足
	popularPadBelow = 5
)

// RecordLister 推荐所需的全部观影记录
type RecordLister interface {
	Records(ctx context.Context, filter RecordFilter) ([]*model.RecordView, error)
}

// SeenLookup 本地已缓存的电影
type SeenLookup interface {
	Seen(ctx context.Context) (*model.SeenSet, error)
}

// GenreTaste 偏好类型
type GenreTaste struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DirectorTaste 偏好导演
type DirectorTaste struct {
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	Count         int     `json:"count"`
}

// TasteProfile 口味画像
type TasteProfile struct {
	TotalMovies        int             `json:"total_movies"`
	LikedThreshold     float64         `json:"liked_threshold"`
	PreferredGenres    []GenreTaste    `json:"preferred_genres"`
	PreferredDirectors []DirectorTaste `json:"preferred_directors"`
}

// Recommendation 带推荐理由的候选
type Recommendation struct {
	Movie      model.CandidateMovie `json:"movie"`
	Reason     string               `json:"reason"`
	ReasonType string               `json:"reason_type"` // genre | popular
}

// RecommendationResult 推荐结果，Warnings 为被跳过的外部请求
type RecommendationResult struct {
	Profile  TasteProfile     `json:"profile"`
	Items    []Recommendation `json:"items"`
	Warnings []string         `json:"-"`
}

// RecommendOptions 推荐参数
type RecommendOptions struct {
	LikedThreshold float64
	MinVoteCount   int
	Limit          int
}

// RecommendationService 推荐服务
type RecommendationService struct {
	records  RecordLister
	seen     SeenLookup
	discover Discoverer
	opts     RecommendOptions
}

// NewRecommendationService 创建推荐服务
func NewRecommendationService(records RecordLister, seen SeenLookup, discover Discoverer, opts RecommendOptions) *RecommendationService {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	return &RecommendationService{
		records:  records,
		seen:     seen,
		discover: discover,
		opts:     opts,
	}
}

// Recommend 根据口味画像推荐未看过的电影
//
// 单个外部请求失败只会跳过该来源并记为警告，存储错误直接返回。
// 没有任何记录时只返回热门。
func (s *RecommendationService) Recommend(ctx context.Context) (*RecommendationResult, error) {
	log := logging.Component("recommend")
	records, err := s.records.Records(ctx, RecordFilter{})
	if err != nil {
		return nil, err
	}
	seen, err := s.seen.Seen(ctx)
	if err != nil {
		return nil, err
	}

	result := &RecommendationResult{
		Profile: BuildTasteProfile(records, s.opts.LikedThreshold),
		Items:   []Recommendation{},
	}
	picked := make(map[int]struct{})
	add := func(c model.CandidateMovie, reason, reasonType string) bool {
		if _, dup := picked[c.ExternalID]; dup || seen.Contains(&c) {
			return false
		}
		picked[c.ExternalID] = struct{}{}
		result.Items = append(result.Items, Recommendation{Movie: c, Reason: reason, ReasonType: reasonType})
		return true
	}

	if len(records) > 0 {
		genres := result.Profile.PreferredGenres
		if len(genres) > discoverGenreCount {
			genres = genres[:discoverGenreCount]
		}
		for _, g := range genres {
			candidates, err := s.discover.DiscoverByGenre(ctx, g.ID, s.opts.MinVoteCount)
			if err != nil {
				log.Warn().Err(err).Int("genre_id", g.ID).Msg("[Recommend] 类型发现失败，跳过")
				result.Warnings = append(result.Warnings, err.Error())
				continue
			}
			taken := 0
			for _, c := range candidates {
				if taken == perGenreCandidates {
					break
				}
				if add(c, fmt.Sprintf("Because you enjoy %s", g.Name), "genre") {
					taken++
				}
			}
		}
	}

	if len(result.Items) < popularPadBelow {
		popular, err := s.discover.Popular(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("[Recommend] 获取热门失败，跳过")
			result.Warnings = append(result.Warnings, err.Error())
		}
		for _, c := range popular {
			add(c, "Popular right now", "popular")
		}
	}

	if len(result.Items) > s.opts.Limit {
		result.Items = result.Items[:s.opts.Limit]
	}
	return result, nil
}

// BuildTasteProfile 由观影记录构建口味画像
//
// 偏好类型：评分不低于阈值的记录中出现最多的 3 个类型，同次数按类型 ID 升序。
// 偏好导演：至少 2 条记录且平均分不低于阈值，按平均分、记录数降序，再按姓名升序，取 3 位。
func BuildTasteProfile(records []*model.RecordView, threshold float64) TasteProfile {
	profile := TasteProfile{
		TotalMovies:        len(records),
		LikedThreshold:     threshold,
		PreferredGenres:    []GenreTaste{},
		PreferredDirectors: []DirectorTaste{},
	}

	genreCounts := make(map[int]int)
	type directorAgg struct {
		sum   float64
		count int
	}
	directors := make(map[string]*directorAgg)

	for _, r := range records {
		if r.Rating >= threshold {
			for _, id := range model.SplitGenreIDs(r.GenreIDs) {
				genreCounts[id]++
			}
		}
		if r.Director == "" || r.Director == model.UnknownDirector {
			continue
		}
		agg, ok := directors[r.Director]
		if !ok {
			agg = &directorAgg{}
			directors[r.Director] = agg
		}
		agg.sum += r.Rating
		agg.count++
	}

	for id, n := range genreCounts {
		profile.PreferredGenres = append(profile.PreferredGenres, GenreTaste{ID: id, Name: model.GenreName(id), Count: n})
	}
	sort.Slice(profile.PreferredGenres, func(i, j int) bool {
		a, b := profile.PreferredGenres[i], profile.PreferredGenres[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.ID < b.ID
	})
	if len(profile.PreferredGenres) > preferredGenreCount {
		profile.PreferredGenres = profile.PreferredGenres[:preferredGenreCount]
	}

	for name, agg := range directors {
		avg := agg.sum / float64(agg.count)
		if agg.count < 2 || avg < threshold {
			continue
		}
		profile.PreferredDirectors = append(profile.PreferredDirectors, DirectorTaste{Name: name, AverageRating: avg, Count: agg.count})
	}
	sort.Slice(profile.PreferredDirectors, func(i, j int) bool {
		a, b := profile.PreferredDirectors[i], profile.PreferredDirectors[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(profile.PreferredDirectors) > preferredDirectorCount {
		profile.PreferredDirectors = profile.PreferredDirectors[:preferredDirectorCount]
	}
	return profile
}
