package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/service"
	"github.com/user/movielog/internal/utils"
)

// SearchMovies 按标题搜索，外部服务失败时返回空列表与警告
func (h *Handler) SearchMovies(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		utils.Success(c, []model.CandidateMovie{})
		return
	}
	results, err := h.Catalog.SearchByTitle(c.Request.Context(), q)
	utils.SuccessWithWarnings(c, results, utils.Warnings(err))
}

// SearchDirector 导演作品
func (h *Handler) SearchDirector(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		utils.Success(c, []model.CandidateMovie{})
		return
	}
	results, err := h.Catalog.SearchByDirectorName(c.Request.Context(), name)
	utils.SuccessWithWarnings(c, results, utils.Warnings(err))
}

// MovieDetails 电影详情
func (h *Handler) MovieDetails(c *gin.Context) {
	id, err := paramID(c, "externalId")
	if err != nil {
		utils.Fail(c, err)
		return
	}
	details, err := h.Catalog.FetchDetails(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if details == nil {
		utils.NotFound(c, "")
		return
	}
	utils.Success(c, details)
}

// DailyBoxOffice 每日票房榜，date 为 YYYYMMDD，默认昨天
func (h *Handler) DailyBoxOffice(c *gin.Context) {
	date := model.Today().AddDays(-1)
	if raw := c.Query("date"); raw != "" {
		d, err := model.ParseCompactDate(raw)
		if err != nil {
			utils.Fail(c, apperr.Validation("handler.boxoffice", "date must be YYYYMMDD: %q", raw))
			return
		}
		date = d
	}
	ranking, err := h.BoxOffice.FetchDailyRanking(c.Request.Context(), date)
	utils.SuccessWithWarnings(c, gin.H{"date": date, "ranking": ranking}, utils.Warnings(err))
}

// QuickRecord 从票房榜直接记录
func (h *Handler) QuickRecord(c *gin.Context) {
	var in service.QuickRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	res, err := h.Journal.QuickRecordFromRanking(c.Request.Context(), in)
	if err != nil {
		utils.FailWrite(c, err)
		return
	}
	utils.Created(c, res, nil)
}
