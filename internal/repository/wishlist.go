package repository

import (
	"context"
	"errors"

	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"gorm.io/gorm"
)

type WishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add 写入电影并加入想看，同一电影只能有一条，重复时返回 KindDuplicate
func (r *WishlistRepository) Add(ctx context.Context, movie *model.Movie, entry *model.WishlistEntry) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		movieID, err := upsertMovie(tx, movie)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.WishlistEntry{}).Where("movie_id = ?", movieID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Duplicate("wishlist.add", "%s is already in the wishlist", movie.Title)
		}

		entry.MovieID = movieID
		return tx.Create(entry).Error
	})
	if err != nil {
		return 0, storageErr("wishlist.add", err)
	}
	return entry.ID, nil
}

// Remove 删除想看条目
func (r *WishlistRepository) Remove(ctx context.Context, wishlistID int) error {
	result := r.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Delete(&model.WishlistEntry{})
	if result.Error != nil {
		return apperr.Storage("wishlist.remove", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("wishlist.remove", "wishlist entry %d not found", wishlistID)
	}
	return nil
}

// FindByID 查找想看条目（含电影），不存在返回 nil, nil
func (r *WishlistRepository) FindByID(ctx context.Context, wishlistID int) (*model.WishlistEntry, error) {
	var entry model.WishlistEntry
	err := r.db.WithContext(ctx).Preload("Movie").Where("wishlist_id = ?", wishlistID).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Storage("wishlist.find", err)
	}
	return &entry, nil
}

// List 想看列表，最近加入的在前
func (r *WishlistRepository) List(ctx context.Context) ([]*model.WishlistEntry, error) {
	var entries []*model.WishlistEntry
	err := r.db.WithContext(ctx).Preload("Movie").
		Order("added_date DESC").
		Order("wishlist_id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Storage("wishlist.list", err)
	}
	return entries, nil
}

// DeleteWatched 清理已有观影记录（观影日期不早于加入日期）的想看条目，返回删除数量
func (r *WishlistRepository) DeleteWatched(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where(`EXISTS (SELECT 1 FROM watch_records r
			WHERE r.movie_id = wishlist.movie_id AND r.watch_date >= wishlist.added_date)`).
		Delete(&model.WishlistEntry{})
	if result.Error != nil {
		return 0, apperr.Storage("wishlist.delete_watched", result.Error)
	}
	return result.RowsAffected, nil
}
