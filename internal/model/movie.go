package model

import (
	"strconv"
	"strings"
	"time"
)

// UnknownDirector 导演缺失时的占位值
const UnknownDirector = "Unknown"

// Movie 本地缓存的电影信息（TMDB），首次被记录或加入想看时写入，之后不再更新
type Movie struct {
	ID            int       `json:"id" gorm:"primaryKey"`
	ExternalID    int       `json:"external_id" gorm:"uniqueIndex;not null"`
	Title         string    `json:"title" gorm:"not null"`
	OriginalTitle string    `json:"original_title"`
	ReleaseDate   string    `json:"release_date"`
	GenreIDs      string    `json:"genre_ids" gorm:"column:genre_ids"` // 逗号分隔，如 "28,12"
	Overview      string    `json:"overview"`
	PosterPath    string    `json:"poster_path"`
	Director      string    `json:"director"`
	Actors        string    `json:"actors"` // 主演，最多 3 人，", " 连接
	Runtime       *int      `json:"runtime"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Movie) TableName() string {
	return "movies"
}

// GenreIDList 类型 ID 切片
func (m *Movie) GenreIDList() []int {
	return SplitGenreIDs(m.GenreIDs)
}

// MovieDetails 详情接口归一化后的结果
type MovieDetails struct {
	ExternalID    int      `json:"external_id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	ReleaseDate   string   `json:"release_date"`
	GenreIDs      []int    `json:"genre_ids"`
	Overview      string   `json:"overview"`
	PosterPath    string   `json:"poster_path"`
	PosterURL     string   `json:"poster_url,omitempty"`
	Director      string   `json:"director"`
	Actors        []string `json:"actors"`
	Runtime       *int     `json:"runtime"`
}

// ToMovie 转为待写入的 Movie
func (d *MovieDetails) ToMovie() *Movie {
	director := strings.TrimSpace(d.Director)
	if director == "" {
		director = UnknownDirector
	}
	actors := d.Actors
	if len(actors) > 3 {
		actors = actors[:3]
	}
	return &Movie{
		ExternalID:    d.ExternalID,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		ReleaseDate:   d.ReleaseDate,
		GenreIDs:      JoinGenreIDs(d.GenreIDs),
		Overview:      d.Overview,
		PosterPath:    d.PosterPath,
		Director:      director,
		Actors:        strings.Join(actors, ", "),
		Runtime:       d.Runtime,
	}
}

// DetailsFromMovie 由本地缓存还原详情，避免重复请求 TMDB
func DetailsFromMovie(m *Movie) *MovieDetails {
	var actors []string
	for _, a := range strings.Split(m.Actors, ",") {
		if s := strings.TrimSpace(a); s != "" {
			actors = append(actors, s)
		}
	}
	return &MovieDetails{
		ExternalID:    m.ExternalID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		ReleaseDate:   m.ReleaseDate,
		GenreIDs:      m.GenreIDList(),
		Overview:      m.Overview,
		PosterPath:    m.PosterPath,
		Director:      m.Director,
		Actors:        actors,
		Runtime:       m.Runtime,
	}
}

// CandidateMovie 搜索 / 发现接口返回的轻量条目
type CandidateMovie struct {
	ExternalID    int     `json:"external_id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    string  `json:"poster_path"`
	PosterURL     string  `json:"poster_url,omitempty"`
	Overview      string  `json:"overview"`
	GenreIDs      []int   `json:"genre_ids,omitempty"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
}

// Year 上映年份，缺失时返回空字符串
func (c *CandidateMovie) Year() string {
	if len(c.ReleaseDate) >= 4 {
		return c.ReleaseDate[:4]
	}
	return ""
}

// RankedTitle 票房榜条目，ExternalID 与海报字段在 TMDB 无匹配时为 nil
type RankedTitle struct {
	Rank          int     `json:"rank"`
	Title         string  `json:"title"`
	OpenDate      string  `json:"open_date"`
	AudienceTotal int64   `json:"audience_total"`
	AudienceDaily int64   `json:"audience_daily"`
	ExternalID    *int    `json:"external_id"`
	PosterPath    *string `json:"poster_path"`
	PosterURL     *string `json:"poster_url"`
}

// PosterURL 拼接海报图片地址，path 为空时返回空字符串
func PosterURL(base, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// WebURL 拼接 TMDB 电影页面地址
func WebURL(base string, externalID int) string {
	if externalID == 0 {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strconv.Itoa(externalID)
}

// SeenSet 本地已缓存电影的 external id 与标题，用于推荐时排除已看过的
type SeenSet struct {
	ExternalIDs map[int]struct{}
	Titles      map[string]struct{}
}

// NewSeenSet 由本地电影构建
func NewSeenSet(movies []*Movie) *SeenSet {
	s := &SeenSet{
		ExternalIDs: make(map[int]struct{}, len(movies)),
		Titles:      make(map[string]struct{}, len(movies)),
	}
	for _, m := range movies {
		s.ExternalIDs[m.ExternalID] = struct{}{}
		if m.Title != "" {
			s.Titles[m.Title] = struct{}{}
		}
	}
	return s
}

// Contains 按 external id 或标题判断是否已看过
func (s *SeenSet) Contains(c *CandidateMovie) bool {
	if s == nil {
		return false
	}
	if _, ok := s.ExternalIDs[c.ExternalID]; ok {
		return true
	}
	_, ok := s.Titles[c.Title]
	return ok
}
