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

type AuthHandler struct {
	svc       *service.AuthService
	uploadDir string
	log       *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, uploadDir string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, uploadDir: uploadDir, log: log}
}

type signupForm struct {
	Username  string `form:"username" binding:"required,min=3,max=64"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"required,min=6"`
	FirstName string `form:"firstName" binding:"omitempty,max=64"`
	LastName  string `form:"lastName" binding:"omitempty,max=64"`
	Gender    string `form:"gender" binding:"omitempty,oneof=male female"`
	IsAdmin   bool   `form:"isAdmin"`
}

// Signup POST /auth/signup（multipart，头像可选）
func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	// 头像先落盘，后续校验失败时再清理
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

	err := h.svc.Signup(c.Request.Context(), service.SignupInput{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
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
	c.Status(http.StatusCreated)
}

type signinReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Signin POST /auth/signin。只回 access token，refresh token 留在服务端。
func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" && req.Email == "" {
		response.Err(c, http.StatusBadRequest, "Username or email is required!")
		return
	}

	access, err := h.svc.Signin(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// Signout POST /auth/signout。删除 refresh 行，重复调用同样 200。
func (h *AuthHandler) Signout(c *gin.Context) {
	if err := h.svc.Signout(c.Request.Context(), c.GetString(middleware.KeyUserID)); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Refresh POST /auth/refresh。校验的是服务端存的 refresh token。
func (h *AuthHandler) Refresh(c *gin.Context) {
	access, err := h.svc.Refresh(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}
