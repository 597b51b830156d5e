package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bids-api/internal/service"
	"bids-api/internal/transport/http/middleware"
	"bids-api/internal/transport/http/response"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type BidHandler struct {
	svc *service.BidService
}

func NewBidHandler(svc *service.BidService) *BidHandler {
	return &BidHandler{svc: svc}
}

// pageParams 解析 limit/offset，越界收敛到默认值
func pageParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return offset, limit
}

// List GET /bids
func (h *BidHandler) List(c *gin.Context) {
	offset, limit := pageParams(c)
	page, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get GET /bids/:id
func (h *BidHandler) Get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type createBidReq struct {
	Message string `json:"message" binding:"required,min=1,max=1000"`
}

// Create POST /bids
func (h *BidHandler) Create(c *gin.Context) {
	var req createBidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.svc.Create(c.Request.Context(), c.GetString(middleware.KeyUserID), req.Message)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

type resolveBidReq struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

// Resolve PATCH /bids/:id（仅管理员）
func (h *BidHandler) Resolve(c *gin.Context) {
	var req resolveBidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	id := c.Param("id")
	if err := h.svc.Resolve(c.Request.Context(), c.GetString(middleware.KeyUserID), id, req.Status, req.Comment); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Request "+id+" was "+req.Status+" successfully!")
}

// Delete DELETE /bids/:id（仅管理员，软删）
func (h *BidHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), c.GetString(middleware.KeyUserID), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Request "+id+" was deleted successfully!")
}
