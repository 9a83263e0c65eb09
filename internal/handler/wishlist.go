package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/movielog/internal/service"
	"github.com/user/movielog/internal/utils"
)

// ListWishlist 想看列表
func (h *Handler) ListWishlist(c *gin.Context) {
	entries, err := h.Journal.Wishlist(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, entries)
}

// AddWishlist 加入想看，已存在时返回 409
func (h *Handler) AddWishlist(c *gin.Context) {
	var in service.WishlistInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	id, err := h.Journal.AddToWishlist(c.Request.Context(), in)
	if err != nil {
		utils.FailWrite(c, err)
		return
	}
	utils.Created(c, gin.H{"wishlist_id": id}, nil)
}

// RemoveWishlist 删除想看
func (h *Handler) RemoveWishlist(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if err := h.Journal.RemoveFromWishlist(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"wishlist_id": id})
}

// PromoteWishlist 想看转为观影记录
func (h *Handler) PromoteWishlist(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return
	}
	var in service.RecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	res, err := h.Journal.PromoteWishlist(c.Request.Context(), id, in)
	if err != nil {
		utils.FailWrite(c, err)
		return
	}
	utils.Created(c, res, nil)
}
