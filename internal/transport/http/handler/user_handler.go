package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bids-api/internal/service"
	"bids-api/internal/transport/http/middleware"
	"bids-api/internal/transport/http/response"
	"bids-api/pkg/utils"
)

type UserHandler struct {
	svc       *service.UserService
	uploadDir string
	log       *zap.Logger
}

func NewUserHandler(svc *service.UserService, uploadDir string, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, uploadDir: uploadDir, log: log}
}

// Profile GET /user/profile
func (h *UserHandler) Profile(c *gin.Context) {
	u, err := h.svc.Profile(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type profileForm struct {
	Username  string `form:"username" binding:"omitempty,min=3,max=64"`
	FirstName string `form:"firstName" binding:"omitempty,max=64"`
	LastName  string `form:"lastName" binding:"omitempty,max=64"`
	Gender    string `form:"gender" binding:"omitempty,oneof=male female"`
	IsAdmin   *bool  `form:"isAdmin"`
}

// Update PUT /user/profile（multipart，字段全部可选）
func (h *UserHandler) Update(c *gin.Context) {
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	var avatarPath *string
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		dst := filepath.Join(h.uploadDir, utils.NewID()+filepath.Ext(file.Filename))
		if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
			response.Err(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := c.SaveUploadedFile(file, dst); err != nil {
			response.Err(c, http.StatusBadRequest, err.Error())
			return
		}
		avatarPath = &dst
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.KeyUserID), service.ProfileUpdate{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Gender:    form.Gender,
		IsAdmin:   form.IsAdmin,
		Avatar:    avatarPath,
	})
	if err != nil {
		if avatarPath != nil {
			if rmErr := os.Remove(*avatarPath); rmErr != nil {
				h.log.Error("remove orphan avatar", zap.String("path", *avatarPath), zap.Error(rmErr))
			}
		}
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Delete DELETE /user/profile（软删，refresh 行一并清掉）
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.GetString(middleware.KeyUserID)); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type restoreReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Restore PATCH /user/profile/restore。不走 Identity：被软删的用户没有可用 token。
func (h *UserHandler) Restore(c *gin.Context) {
	var req restoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" && req.Email == "" {
		response.Err(c, http.StatusBadRequest, "Username or email is required!")
		return
	}
	if err := h.svc.Restore(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
