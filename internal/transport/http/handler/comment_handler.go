package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bids-api/internal/service"
	"bids-api/internal/transport/http/middleware"
	"bids-api/internal/transport/http/response"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List GET /bids/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	offset, limit := pageParams(c)
	page, err := h.svc.List(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type commentReq struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

// Create POST /bids/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	cm, err := h.svc.Create(c.Request.Context(), c.GetString(middleware.KeyUserID), c.Param("id"), req.Message)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

// Edit PATCH /bids/:id/comments/:commentId（只能改自己的）
func (h *CommentHandler) Edit(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.svc.Edit(c.Request.Context(), c.GetString(middleware.KeyUserID), c.Param("id"), c.Param("commentId"), req.Message)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Delete DELETE /bids/:id/comments/:commentId（物理删除）
func (h *CommentHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.GetString(middleware.KeyUserID), c.Param("id"), c.Param("commentId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
