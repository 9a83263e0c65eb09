package model

import "time"

// LocationCategory 观影方式分类，由地点文本推导
type LocationCategory string

const (
	LocationTheater   LocationCategory = "theater"
	LocationStreaming LocationCategory = "streaming"
	LocationOther     LocationCategory = "other"
)

// SyntheticLocationBoxOffice 从票房榜快速记录时写入的地点，不计入地点统计
const SyntheticLocationBoxOffice = "Added from box office ranking"

// SyntheticLocations 自动导入路径写入的地点
var SyntheticLocations = []string{SyntheticLocationBoxOffice}

// IsSyntheticLocation 是否为自动写入的地点
func IsSyntheticLocation(location string) bool {
	for _, s := range SyntheticLocations {
		if s == location {
			return true
		}
	}
	return false
}

// WatchRecord 一次观影记录
type WatchRecord struct {
	ID               int              `json:"record_id" gorm:"column:record_id;primaryKey;autoIncrement"`
	MovieID          int              `json:"movie_id" gorm:"not null;index:idx_record_movie_date"`
	Movie            *Movie           `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
	WatchDate        Date             `json:"watch_date" gorm:"type:varchar(10);not null;index:idx_record_movie_date;index"`
	Rating           float64          `json:"rating"`
	Review           string           `json:"review"`
	LocationCategory LocationCategory `json:"location_category" gorm:"type:varchar(16)"`
	LocationDetail   string           `json:"location_detail"`
	CreatedAt        time.Time        `json:"created_at"`
}

func (WatchRecord) TableName() string {
	return "watch_records"
}

// WishlistEntry 想看
type WishlistEntry struct {
	ID        int       `json:"wishlist_id" gorm:"column:wishlist_id;primaryKey;autoIncrement"`
	MovieID   int       `json:"movie_id" gorm:"not null;uniqueIndex"`
	Movie     *Movie    `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
	AddedDate Date      `json:"added_date" gorm:"type:varchar(10);not null"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (WishlistEntry) TableName() string {
	return "wishlist"
}

// RecordView 观影记录与电影信息的联表行，附带派生字段
type RecordView struct {
	RecordID         int              `json:"record_id"`
	MovieID          int              `json:"movie_id"`
	ExternalID       int              `json:"external_id"`
	Title            string           `json:"title"`
	OriginalTitle    string           `json:"original_title"`
	PosterPath       string           `json:"poster_path"`
	GenreIDs         string           `json:"genre_ids"`
	Director         string           `json:"director"`
	Actors           string           `json:"actors"`
	Runtime          *int             `json:"runtime"`
	WatchDate        Date             `json:"watch_date"`
	Rating           float64          `json:"rating"`
	Review           string           `json:"review"`
	LocationCategory LocationCategory `json:"location_category"`
	LocationDetail   string           `json:"location_detail"`

	// 派生字段
	YearMonth  string   `json:"year_month" gorm:"-"`
	Weekday    string   `json:"weekday" gorm:"-"`
	GenreNames []string `json:"genre_names" gorm:"-"`
	WebURL     string   `json:"web_url" gorm:"-"`
}

// Decorate 填充派生字段
func (v *RecordView) Decorate(webBase string) {
	v.YearMonth = v.WatchDate.YearMonth()
	v.Weekday = v.WatchDate.Weekday().String()
	v.GenreNames = GenreNames(SplitGenreIDs(v.GenreIDs))
	v.WebURL = WebURL(webBase, v.ExternalID)
}
