package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/repository"
	"github.com/user/movielog/internal/service"
	"github.com/user/movielog/internal/utils"
)

// JournalService 观影记录与想看
type JournalService interface {
	RecordWatchByID(ctx context.Context, externalID int, in service.RecordInput) (*repository.InsertResult, error)
	QuickRecordFromRanking(ctx context.Context, in service.QuickRecordInput) (*repository.InsertResult, error)
	UpdateReview(ctx context.Context, recordID int, review string) error
	DeleteRecord(ctx context.Context, recordID int) error
	Records(ctx context.Context, filter service.RecordFilter) ([]*model.RecordView, error)
	RecordsInPeriod(ctx context.Context, start, end model.Date) ([]*model.RecordView, error)
	RecentLocations(ctx context.Context, q repository.LocationQuery) ([]string, error)
	AddToWishlist(ctx context.Context, in service.WishlistInput) (int, error)
	RemoveFromWishlist(ctx context.Context, wishlistID int) error
	Wishlist(ctx context.Context) ([]*model.WishlistEntry, error)
	PromoteWishlist(ctx context.Context, wishlistID int, in service.RecordInput) (*repository.InsertResult, error)
}

// ReportSource 报表与统计
type ReportSource interface {
	Monthly(ctx context.Context, year, month int) (*service.MonthlyReport, error)
	Yearly(ctx context.Context, year int) (*service.YearlyReport, error)
	Overview(ctx context.Context) (*service.Overview, error)
}

// Recommender 推荐
type Recommender interface {
	Recommend(ctx context.Context) (*service.RecommendationResult, error)
}

// Handler HTTP 处理器
type Handler struct {
	Catalog     service.Catalog
	BoxOffice   service.BoxOffice
	Journal     JournalService
	Reports     ReportSource
	Recommender Recommender
}

// NewHandler 创建处理器
func NewHandler(catalog service.Catalog, boxOffice service.BoxOffice, journal JournalService, reports ReportSource, recommender Recommender) *Handler {
	return &Handler{
		Catalog:     catalog,
		BoxOffice:   boxOffice,
		Journal:     journal,
		Reports:     reports,
		Recommender: recommender,
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	utils.Success(c, gin.H{"status": "ok"})
}

// paramID 解析路径中的正整数 ID
func paramID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("handler.param", "invalid %s: %q", name, c.Param(name))
	}
	return id, nil
}

// queryInt 解析查询参数中的整数，缺省时返回 def
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("handler.query", "invalid %s: %q", name, raw)
	}
	return n, nil
}
