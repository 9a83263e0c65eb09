package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"gorm.io/gorm"
)

type WatchRecordRepository struct {
	db *gorm.DB
}

func NewWatchRecordRepository(db *gorm.DB) *WatchRecordRepository {
	return &WatchRecordRepository{db: db}
}

// InsertResult 写入观影记录的结果
type InsertResult struct {
	RecordID         int  `json:"record_id"`
	MovieID          int  `json:"movie_id"`
	WishlistConsumed bool `json:"wishlist_consumed"` // 同一事务内删除了该电影的想看条目
}

// Insert 写入观影记录
//
// 同一事务内：按 external_id 写入电影，检查 (movie_id, watch_date) 是否已有记录，
// 插入记录并消耗该电影的想看条目。重复时返回 KindDuplicate，整个事务回滚，想看条目保留。
func (r *WatchRecordRepository) Insert(ctx context.Context, movie *model.Movie, rec *model.WatchRecord) (*InsertResult, error) {
	res := &InsertResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movieID, err := upsertMovie(tx, movie)
		if err != nil {
			return err
		}

		var count int64
		err = tx.Model(&model.WatchRecord{}).
			Where("movie_id = ? AND watch_date = ?", movieID, rec.WatchDate).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.Duplicate("record.insert", "%s is already recorded on %s", movie.Title, rec.WatchDate)
		}

		rec.MovieID = movieID
		if err := tx.Create(rec).Error; err != nil {
			return err
		}

		del := tx.Where("movie_id = ?", movieID).Delete(&model.WishlistEntry{})
		if del.Error != nil {
			return del.Error
		}

		res.RecordID = rec.ID
		res.MovieID = movieID
		res.WishlistConsumed = del.RowsAffected > 0
		return nil
	})
	if err != nil {
		return nil, storageErr("record.insert", err)
	}
	return res, nil
}

// UpdateReview 只修改短评
func (r *WatchRecordRepository) UpdateReview(ctx context.Context, recordID int, review string) error {
	result := r.db.WithContext(ctx).Model(&model.WatchRecord{}).
		Where("record_id = ?", recordID).
		Update("review", review)
	if result.Error != nil {
		return apperr.Storage("record.update_review", result.Error)
	}
	if result.RowsAffected == 0 {
		// 短评未变化时 RowsAffected 也可能为 0，再确认一次是否存在
		exists, err := r.exists(ctx, recordID)
		if err != nil {
			return apperr.Storage("record.update_review", err)
		}
		if !exists {
			return apperr.NotFound("record.update_review", "record %d not found", recordID)
		}
	}
	return nil
}

// Delete 删除观影记录，不存在时返回 KindNotFound
func (r *WatchRecordRepository) Delete(ctx context.Context, recordID int) error {
	result := r.db.WithContext(ctx).Where("record_id = ?", recordID).Delete(&model.WatchRecord{})
	if result.Error != nil {
		return apperr.Storage("record.delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("record.delete", "record %d not found", recordID)
	}
	return nil
}

// FindByID 查找单条记录，不存在返回 nil, nil
func (r *WatchRecordRepository) FindByID(ctx context.Context, recordID int) (*model.WatchRecord, error) {
	var rec model.WatchRecord
	err := r.db.WithContext(ctx).Preload("Movie").Where("record_id = ?", recordID).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Storage("record.find", err)
	}
	return &rec, nil
}

// Count 记录总数
func (r *WatchRecordRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.WatchRecord{}).Count(&count).Error; err != nil {
		return 0, apperr.Storage("record.count", err)
	}
	return int(count), nil
}

// ListJoined 所有记录与电影联表，按观影日期倒序，同日按记录 ID 倒序
func (r *WatchRecordRepository) ListJoined(ctx context.Context, webBase string) ([]*model.RecordView, error) {
	views, err := r.joined(ctx, webBase, nil)
	if err != nil {
		return nil, apperr.Storage("record.list", err)
	}
	return views, nil
}

// ListInPeriod 半开区间 [start, end) 内的记录
func (r *WatchRecordRepository) ListInPeriod(ctx context.Context, start, end model.Date, webBase string) ([]*model.RecordView, error) {
	views, err := r.joined(ctx, webBase, func(q *gorm.DB) *gorm.DB {
		return q.Where("r.watch_date >= ? AND r.watch_date < ?", start, end)
	})
	if err != nil {
		return nil, apperr.Storage("record.list_period", err)
	}
	return views, nil
}

func (r *WatchRecordRepository) joined(ctx context.Context, webBase string, scope func(*gorm.DB) *gorm.DB) ([]*model.RecordView, error) {
	q := r.db.WithContext(ctx).
		Table("watch_records AS r").
		Select(`r.record_id, r.movie_id, m.external_id, m.title, m.original_title, m.poster_path,
			m.genre_ids, m.director, m.actors, m.runtime,
			r.watch_date, r.rating, r.review, r.location_category, r.location_detail`).
		Joins("LEFT JOIN movies AS m ON m.id = r.movie_id")
	if scope != nil {
		q = scope(q)
	}

	var rows []*joinedRow
	if err := q.Order("r.watch_date DESC, r.record_id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]*model.RecordView, 0, len(rows))
	for _, row := range rows {
		v := row.view()
		v.Decorate(webBase)
		views = append(views, v)
	}
	return views, nil
}

// joinedRow LEFT JOIN 扫描行，电影列可能为 NULL
type joinedRow struct {
	RecordID         int        `gorm:"column:record_id"`
	MovieID          int        `gorm:"column:movie_id"`
	ExternalID       *int       `gorm:"column:external_id"`
	Title            *string    `gorm:"column:title"`
	OriginalTitle    *string    `gorm:"column:original_title"`
	PosterPath       *string    `gorm:"column:poster_path"`
	GenreIDs         *string    `gorm:"column:genre_ids"`
	Director         *string    `gorm:"column:director"`
	Actors           *string    `gorm:"column:actors"`
	Runtime          *int       `gorm:"column:runtime"`
	WatchDate        model.Date `gorm:"column:watch_date"`
	Rating           float64    `gorm:"column:rating"`
	Review           *string    `gorm:"column:review"`
	LocationCategory *string    `gorm:"column:location_category"`
	LocationDetail   *string    `gorm:"column:location_detail"`
}

func (row *joinedRow) view() *model.RecordView {
	v := &model.RecordView{
		RecordID:       row.RecordID,
		MovieID:        row.MovieID,
		Title:          deref(row.Title),
		OriginalTitle:  deref(row.OriginalTitle),
		PosterPath:     deref(row.PosterPath),
		GenreIDs:       deref(row.GenreIDs),
		Director:       deref(row.Director),
		Actors:         deref(row.Actors),
		Runtime:        row.Runtime,
		WatchDate:      row.WatchDate,
		Rating:         row.Rating,
		Review:         deref(row.Review),
		LocationDetail: deref(row.LocationDetail),
	}
	if row.ExternalID != nil {
		v.ExternalID = *row.ExternalID
	}
	v.LocationCategory = model.LocationCategory(deref(row.LocationCategory))
	return v
}

// LocationQuery 最近地点查询条件
type LocationQuery struct {
	// Category 为空表示不限
	Category model.LocationCategory
	// RankByFrequency 为 false 时按最近观影日期排序
	RankByFrequency bool
	// Limit <= 0 表示不限
	Limit int
}

// DistinctLocations 去重后的地点列表，排除空值与自动写入的地点，并列时按字母序
func (r *WatchRecordRepository) DistinctLocations(ctx context.Context, q LocationQuery) ([]string, error) {
	type locationRow struct {
		LocationDetail string
		Uses           int
		LastDate       string
	}

	db := r.db.WithContext(ctx).Model(&model.WatchRecord{}).
		Select("location_detail, COUNT(*) AS uses, MAX(watch_date) AS last_date").
		Where("location_detail <> ''").
		Where("location_detail NOT IN ?", model.SyntheticLocations)
	if q.Category != "" {
		db = db.Where("location_category = ?", q.Category)
	}

	var rows []locationRow
	if err := db.Group("location_detail").Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("record.locations", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if q.RankByFrequency {
			if a.Uses != b.Uses {
				return a.Uses > b.Uses
			}
		} else if a.LastDate != b.LastDate {
			return a.LastDate > b.LastDate
		}
		return a.LocationDetail < b.LocationDetail
	})

	locations := make([]string, 0, len(rows))
	for _, row := range rows {
		if q.Limit > 0 && len(locations) >= q.Limit {
			break
		}
		locations = append(locations, row.LocationDetail)
	}
	return locations, nil
}

func (r *WatchRecordRepository) exists(ctx context.Context, recordID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WatchRecord{}).Where("record_id = ?", recordID).Count(&count).Error
	return count > 0, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// storageErr 已分类的应用错误原样返回，其余包装为存储错误
func storageErr(op string, err error) error {
	if apperr.KindOf(err) != "" {
		return err
	}
	return apperr.Storage(op, err)
}
