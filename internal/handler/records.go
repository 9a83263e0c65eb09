package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/movielog/internal/apperr"
	"github.com/user/movielog/internal/model"
	"github.com/user/movielog/internal/repository"
	"github.com/user/movielog/internal/service"
	"github.com/user/movielog/internal/utils"
)

// CreateRecordRequest 新增观影记录
type CreateRecordRequest struct {
	ExternalID int `json:"external_id" binding:"required,gt=0"`
	service.RecordInput
}

// ReviewRequest 修改短评
type ReviewRequest struct {
	Review string `json:"review"`
}

// ListRecords 记录列表，支持 title / genre / director / actor 筛选（可重复）
func (h *Handler) ListRecords(c *gin.Context) {
	filter := service.RecordFilter{
		Title:     c.Query("title"),
		Genres:    c.QueryArray("genre"),
		Directors: c.QueryArray("director"),
		Actors:    c.QueryArray("actor"),
	}
	records, err := h.Journal.Records(c.Request.Context(), filter)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, records)
}

// CreateRecord 新增观影记录
func (h *Handler) CreateRecord(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	res, err := h.Journal.RecordWatchByID(c.Request.Context(), req.ExternalID, req.RecordInput)
	if err != nil {
		utils.FailWrite(c, err)
		return
	}
	utils.Created(c, res, nil)
}

// UpdateReview 修改短评
func (h *Handler) UpdateReview(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if err := h.Journal.UpdateReview(c.Request.Context(), id, req.Review); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"record_id": id})
}

// DeleteRecord 删除记录
func (h *Handler) DeleteRecord(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if err := h.Journal.DeleteRecord(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"record_id": id})
}

// RecordsInPeriod [start, end) 内的记录，日期为 YYYY-MM-DD
func (h *Handler) RecordsInPeriod(c *gin.Context) {
	start, err := model.ParseDate(c.Query("start"))
	if err != nil {
		utils.Fail(c, apperr.Validation("handler.period", "start must be YYYY-MM-DD"))
		return
	}
	end, err := model.ParseDate(c.Query("end"))
	if err != nil {
		utils.Fail(c, apperr.Validation("handler.period", "end must be YYYY-MM-DD"))
		return
	}
	records, err := h.Journal.RecordsInPeriod(c.Request.Context(), start, end)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, records)
}

// Locations 用过的地点，ranked=true 时按次数排序，否则按最近
func (h *Handler) Locations(c *gin.Context) {
	category := model.LocationCategory(c.Query("category"))
	switch category {
	case "", model.LocationTheater, model.LocationStreaming, model.LocationOther:
	default:
		utils.Fail(c, apperr.Validation("handler.locations", "unknown category %q", category))
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	locations, err := h.Journal.RecentLocations(c.Request.Context(), repository.LocationQuery{
		Category:        category,
		RankByFrequency: c.Query("ranked") == "true",
		Limit:           limit,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, locations)
}
