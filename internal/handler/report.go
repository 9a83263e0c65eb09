package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/movielog/internal/utils"
)

// MonthlyReport 月度报表，默认当月
func (h *Handler) MonthlyReport(c *gin.Context) {
	now := time.Now()
	year, err := queryInt(c, "year", now.Year())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	month, err := queryInt(c, "month", int(now.Month()))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	report, err := h.Reports.Monthly(c.Request.Context(), year, month)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, report)
}

// YearlyReport 年度报表，默认今年
func (h *Handler) YearlyReport(c *gin.Context) {
	year, err := queryInt(c, "year", time.Now().Year())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	report, err := h.Reports.Yearly(c.Request.Context(), year)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, report)
}

// Stats 全部记录的统计
func (h *Handler) Stats(c *gin.Context) {
	overview, err := h.Reports.Overview(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, overview)
}

// Recommendations 推荐，部分外部请求失败时附带警告
func (h *Handler) Recommendations(c *gin.Context) {
	res, err := h.Recommender.Recommend(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.SuccessWithWarnings(c, res, res.Warnings)
}
