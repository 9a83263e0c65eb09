package repository

import (
	"context"
	"errors"

	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindByExternalID 根据 TMDB ID 查找电影，不存在返回 nil, nil
func (r *MovieRepository) FindByExternalID(ctx context.Context, externalID int) (*model.Movie, error) {
	movie, err := findMovie(r.db.WithContext(ctx), "external_id = ?", externalID)
	if err != nil {
		return nil, apperr.Storage("movie.find", err)
	}
	return movie, nil
}

// Upsert 按 external_id 幂等写入，已存在时返回原有 ID，不更新任何字段
func (r *MovieRepository) Upsert(ctx context.Context, movie *model.Movie) (int, error) {
	var id int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = upsertMovie(tx, movie)
		return err
	})
	if err != nil {
		return 0, apperr.Storage("movie.upsert", err)
	}
	return id, nil
}

// Seen 本地所有电影的 external id 与标题
func (r *MovieRepository) Seen(ctx context.Context) (*model.SeenSet, error) {
	var movies []*model.Movie
	err := r.db.WithContext(ctx).Select("id", "external_id", "title").Find(&movies).Error
	if err != nil {
		return nil, apperr.Storage("movie.seen", err)
	}
	return model.NewSeenSet(movies), nil
}

// Count 电影数量
func (r *MovieRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Movie{}).Count(&count).Error; err != nil {
		return 0, apperr.Storage("movie.count", err)
	}
	return int(count), nil
}

func findMovie(db *gorm.DB, query string, args ...interface{}) (*model.Movie, error) {
	var movie model.Movie
	err := db.Where(query, args...).Take(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movie, nil
}

// upsertMovie 在给定事务内查找或插入电影
func upsertMovie(tx *gorm.DB, movie *model.Movie) (int, error) {
	existing, err := findMovie(tx, "external_id = ?", movie.ExternalID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	// 并发写入同一电影时由唯一索引兜底
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(movie).Error; err != nil {
		return 0, err
	}
	if movie.ID != 0 {
		return movie.ID, nil
	}

	existing, err = findMovie(tx, "external_id = ?", movie.ExternalID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, errors.New("movie vanished after upsert")
	}
	return existing.ID, nil
}
