package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/config"
	"github.com/user/movielog/internal/logging"
	"github.com/user/movielog/internal/metrics"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/utils"
)

// BoxOffice 每日票房榜
type BoxOffice interface {
	FetchDailyRanking(ctx context.Context, date model.Date) ([]model.RankedTitle, error)
}

// TitleSearcher 票房榜条目匹配 TMDB 用
type TitleSearcher interface {
	SearchByTitle(ctx context.Context, query string) ([]model.CandidateMovie, error)
}

// KOBISClient 韩国电影振兴委员会票房接口
type KOBISClient struct {
	http    *utils.HTTPClient
	cfg     config.KOBISConfig
	catalog TitleSearcher
	matches *utils.SearchCache[titleMatch]
}

type titleMatch struct {
	ExternalID int
	PosterPath string
	PosterURL  string
	Found      bool
}

// NewKOBISClient catalog 可为 nil，此时不匹配海报
func NewKOBISClient(cfg config.KOBISConfig, catalog TitleSearcher) *KOBISClient {
	if cfg.RankingSize <= 0 {
		cfg.RankingSize = 10
	}
	return &KOBISClient{
		http: utils.NewHTTPClient("kobis", utils.HTTPClientOptions{
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
		}),
		cfg:     cfg,
		catalog: catalog,
		matches: utils.NewSearchCache[titleMatch](500, 24*time.Hour),
	}
}

type kobisDailyResponse struct {
	BoxOfficeResult struct {
		DailyBoxOfficeList []struct {
			Rank    string `json:"rank"`
			MovieNm string `json:"movieNm"`
			OpenDt  string `json:"openDt"`
			AudiCnt string `json:"audiCnt"`
			AudiAcc string `json:"audiAcc"`
		} `json:"dailyBoxOfficeList"`
	} `json:"boxOfficeResult"`
}

// FetchDailyRanking 某日票房榜前 10，逐条按标题匹配 TMDB 海报；匹配不到的条目保留，海报字段为 nil
func (s *KOBISClient) FetchDailyRanking(ctx context.Context, date model.Date) ([]model.RankedTitle, error) {
	const op = "kobis.daily"
	log := logging.Component("kobis")
	if s.cfg.APIKey == "" {
		return []model.RankedTitle{}, apperr.Provider(op, errMissingAPIKey)
	}

	var resp kobisDailyResponse
	params := url.Values{"key": {s.cfg.APIKey}, "targetDt": {date.Compact()}}
	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/searchDailyBoxOfficeList.json"
	if err := s.http.GetJSON(ctx, endpoint, params, &resp); err != nil {
		log.Warn().Err(err).Str("date", date.String()).Msg("[KOBIS] 获取票房榜失败")
		return []model.RankedTitle{}, apperr.Provider(op, err)
	}

	list := resp.BoxOfficeResult.DailyBoxOfficeList
	if len(list) > s.cfg.RankingSize {
		list = list[:s.cfg.RankingSize]
	}

	ranking := make([]model.RankedTitle, 0, len(list))
	for i, item := range list {
		rank, err := strconv.Atoi(item.Rank)
		if err != nil {
			rank = i + 1
		}
		rt := model.RankedTitle{
			Rank:          rank,
			Title:         item.MovieNm,
			OpenDate:      item.OpenDt,
			AudienceTotal: parseCount(item.AudiAcc),
			AudienceDaily: parseCount(item.AudiCnt),
		}
		if m, ok := s.match(ctx, item.MovieNm); ok {
			id, poster, posterURL := m.ExternalID, m.PosterPath, m.PosterURL
			rt.ExternalID = &id
			if poster != "" {
				rt.PosterPath = &poster
				rt.PosterURL = &posterURL
			}
		}
		ranking = append(ranking, rt)
	}
	return ranking, nil
}

// match 用清理后的标题取 TMDB 搜索的第一条，搜索失败不缓存
func (s *KOBISClient) match(ctx context.Context, title string) (titleMatch, bool) {
	if s.catalog == nil || strings.TrimSpace(title) == "" {
		return titleMatch{}, false
	}
	if m, ok := s.matches.Get(title); ok {
		metrics.ProviderCacheHits.WithLabelValues("kobis").Inc()
		return m, m.Found
	}

	results, err := s.catalog.SearchByTitle(ctx, utils.CleanMovieTitle(title))
	if err != nil {
		logging.Component("kobis").Debug().Err(err).Str("title", title).Msg("[KOBIS] 海报匹配失败")
		return titleMatch{}, false
	}
	m := titleMatch{}
	if len(results) > 0 {
		first := results[0]
		m = titleMatch{ExternalID: first.ExternalID, PosterPath: first.PosterPath, PosterURL: first.PosterURL, Found: true}
	}
	s.matches.Set(title, m)
	return m, m.Found
}

// parseCount KOBIS 数值字段为字符串，偶尔带千分位
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
