package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/config"
	"github.com/user/movielog/internal/logging"
	"github.com/user/movielog/internal/metrics"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/utils"
	"golang.org/x/sync/singleflight"
)

// maxDirectorResults 导演作品搜索结果上限
const maxDirectorResults = 20

var errMissingAPIKey = errors.New("api key is not configured")

// Catalog 电影目录：标题 / 导演搜索与详情
type Catalog interface {
	SearchByTitle(ctx context.Context, query string) ([]model.CandidateMovie, error)
	SearchByDirectorName(ctx context.Context, name string) ([]model.CandidateMovie, error)
	FetchDetails(ctx context.Context, externalID int) (*model.MovieDetails, error)
}

// Discoverer 推荐候选来源
type Discoverer interface {
	DiscoverByGenre(ctx context.Context, genreID, minVoteCount int) ([]model.CandidateMovie, error)
	Popular(ctx context.Context) ([]model.CandidateMovie, error)
}

// TMDBClient TMDB 客户端
//
// 所有方法都是 fail-soft：请求失败时返回空结果和 KindProvider 错误，
// 调用方把错误当作提示展示，不中断流程。
type TMDBClient struct {
	http    *utils.HTTPClient
	cfg     config.TMDBConfig
	lists   *utils.TTLCache[[]model.CandidateMovie]
	details *utils.TTLCache[*model.MovieDetails]
	group   singleflight.Group
}

func NewTMDBClient(cfg config.TMDBConfig) *TMDBClient {
	return &TMDBClient{
		http: utils.NewHTTPClient("tmdb", utils.HTTPClientOptions{
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
		}),
		cfg:     cfg,
		lists:   utils.NewTTLCache[[]model.CandidateMovie](cfg.CacheTTL),
		details: utils.NewTTLCache[*model.MovieDetails](cfg.CacheTTL),
	}
}

type tmdbMovieResult struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    string  `json:"poster_path"`
	Overview      string  `json:"overview"`
	GenreIDs      []int   `json:"genre_ids"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Job           string  `json:"job"`
}

// candidate 列表条目转为候选电影，附带完整海报地址
func (s *TMDBClient) candidate(r tmdbMovieResult) model.CandidateMovie {
	return model.CandidateMovie{
		ExternalID:    r.ID,
		Title:         r.Title,
		OriginalTitle: r.OriginalTitle,
		ReleaseDate:   r.ReleaseDate,
		PosterPath:    r.PosterPath,
		PosterURL:     model.PosterURL(s.cfg.ImageURL, r.PosterPath),
		Overview:      r.Overview,
		GenreIDs:      r.GenreIDs,
		VoteAverage:   r.VoteAverage,
		VoteCount:     r.VoteCount,
	}
}

type tmdbListResponse struct {
	Results []tmdbMovieResult `json:"results"`
}

type tmdbPersonResponse struct {
	Results []struct {
		ID                 int    `json:"id"`
		Name               string `json:"name"`
		KnownForDepartment string `json:"known_for_department"`
	} `json:"results"`
}

type tmdbCreditsResponse struct {
	Crew []tmdbMovieResult `json:"crew"`
}

type tmdbDetailsResponse struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
	Overview      string `json:"overview"`
	PosterPath    string `json:"poster_path"`
	Runtime       *int   `json:"runtime"`
	Genres        []struct {
		ID int `json:"id"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// SearchByTitle 按标题搜索
func (s *TMDBClient) SearchByTitle(ctx context.Context, query string) ([]model.CandidateMovie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.CandidateMovie{}, nil
	}
	return s.list(ctx, "tmdb.search", "/search/movie", url.Values{"query": {query}})
}

// SearchByDirectorName 按导演姓名搜索其导演作品
//
// 先在人物搜索中筛出部门为 Directing 的人，再取每人的作品里 job 为 Director 的条目，
// 按 external id 去重，按上映日期倒序，最多 20 部。
func (s *TMDBClient) SearchByDirectorName(ctx context.Context, name string) ([]model.CandidateMovie, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []model.CandidateMovie{}, nil
	}
	const op = "tmdb.search_director"
	key := "director:" + strings.ToLower(name)
	if cached, ok := s.lists.Get(key); ok {
		metrics.ProviderCacheHits.WithLabelValues("tmdb").Inc()
		return cached, nil
	}

	var people tmdbPersonResponse
	if err := s.get(ctx, "/search/person", url.Values{"query": {name}}, &people); err != nil {
		return s.fail(op, err)
	}

	seen := make(map[int]struct{})
	result := []model.CandidateMovie{}
	var lastErr error
	for _, p := range people.Results {
		if p.KnownForDepartment != "Directing" {
			continue
		}
		var credits tmdbCreditsResponse
		if err := s.get(ctx, fmt.Sprintf("/person/%d/movie_credits", p.ID), nil, &credits); err != nil {
			// 单个人物失败时跳过，保留其他人的结果
			lastErr = err
			logging.Component("tmdb").Warn().Err(err).Int("person_id", p.ID).Msg("[TMDB] 获取导演作品失败")
			continue
		}
		for _, c := range credits.Crew {
			if c.Job != "Director" {
				continue
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			result = append(result, s.candidate(c))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ReleaseDate > result[j].ReleaseDate
	})
	if len(result) > maxDirectorResults {
		result = result[:maxDirectorResults]
	}

	if lastErr != nil && len(result) == 0 {
		return s.fail(op, lastErr)
	}
	if lastErr == nil {
		s.lists.Set(key, result)
	}
	return result, nil
}

// FetchDetails 获取详情（含导演与前三位主演），失败返回 nil
func (s *TMDBClient) FetchDetails(ctx context.Context, externalID int) (*model.MovieDetails, error) {
	const op = "tmdb.details"
	key := "details:" + strconv.Itoa(externalID)
	if cached, ok := s.details.Get(key); ok {
		metrics.ProviderCacheHits.WithLabelValues("tmdb").Inc()
		return cached, nil
	}

	// 使用 singleflight 避免并发重复抓取
	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		var resp tmdbDetailsResponse
		params := url.Values{"append_to_response": {"credits"}}
		if err := s.get(ctx, fmt.Sprintf("/movie/%d", externalID), params, &resp); err != nil {
			return nil, err
		}
		details := resp.normalize()
		details.PosterURL = model.PosterURL(s.cfg.ImageURL, details.PosterPath)
		s.details.Set(key, details)
		return details, nil
	})
	if err != nil {
		logging.Component("tmdb").Warn().Err(err).Int("external_id", externalID).Msg("[TMDB] 获取详情失败")
		return nil, apperr.Provider(op, err)
	}
	return val.(*model.MovieDetails), nil
}

// DiscoverByGenre 某类型下评分最高的电影，vote_count 低于下限的不参与
func (s *TMDBClient) DiscoverByGenre(ctx context.Context, genreID, minVoteCount int) ([]model.CandidateMovie, error) {
	return s.list(ctx, "tmdb.discover", "/discover/movie", url.Values{
		"with_genres":    {strconv.Itoa(genreID)},
		"sort_by":        {"vote_average.desc"},
		"vote_count.gte": {strconv.Itoa(minVoteCount)},
	})
}

// Popular 当前热门
func (s *TMDBClient) Popular(ctx context.Context) ([]model.CandidateMovie, error) {
	return s.list(ctx, "tmdb.popular", "/movie/popular", nil)
}

func (s *TMDBClient) list(ctx context.Context, op, path string, params url.Values) ([]model.CandidateMovie, error) {
	key := path + "?" + params.Encode()
	if cached, ok := s.lists.Get(key); ok {
		metrics.ProviderCacheHits.WithLabelValues("tmdb").Inc()
		return cached, nil
	}

	var resp tmdbListResponse
	if err := s.get(ctx, path, params, &resp); err != nil {
		return s.fail(op, err)
	}
	result := make([]model.CandidateMovie, 0, len(resp.Results))
	for _, r := range resp.Results {
		result = append(result, s.candidate(r))
	}
	s.lists.Set(key, result)
	return result, nil
}

// get 每次请求都带上 api_key 与 language
func (s *TMDBClient) get(ctx context.Context, path string, params url.Values, target interface{}) error {
	if s.cfg.APIKey == "" {
		return errMissingAPIKey
	}
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", s.cfg.APIKey)
	q.Set("language", s.cfg.Language)
	return s.http.GetJSON(ctx, strings.TrimRight(s.cfg.BaseURL, "/")+path, q, target)
}

func (s *TMDBClient) fail(op string, err error) ([]model.CandidateMovie, error) {
	logging.Component("tmdb").Warn().Err(err).Str("op", op).Msg("[TMDB] 请求失败")
	return []model.CandidateMovie{}, apperr.Provider(op, err)
}

func (r *tmdbDetailsResponse) normalize() *model.MovieDetails {
	d := &model.MovieDetails{
		ExternalID:    r.ID,
		Title:         r.Title,
		OriginalTitle: r.OriginalTitle,
		ReleaseDate:   r.ReleaseDate,
		Overview:      r.Overview,
		PosterPath:    r.PosterPath,
		Director:      model.UnknownDirector,
	}
	if r.Runtime != nil && *r.Runtime > 0 {
		runtime := *r.Runtime
		d.Runtime = &runtime
	}
	for _, g := range r.Genres {
		d.GenreIDs = append(d.GenreIDs, g.ID)
	}
	for _, c := range r.Credits.Crew {
		if c.Job == "Director" && c.Name != "" {
			d.Director = c.Name
			break
		}
	}

	cast := r.Credits.Cast
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	for _, c := range cast {
		if len(d.Actors) == 3 {
			break
		}
		d.Actors = append(d.Actors, c.Name)
	}
	return d
}
