package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bids-api/internal/core/auth"
	"bids-api/internal/core/database"
	"bids-api/internal/domain"
	"bids-api/internal/repo"
	"bids-api/internal/service"
	"bids-api/internal/transport/http/handler"
	"bids-api/internal/transport/http/router"
)

// recordMailer 记录发信调用，替代真 SendGrid
type recordMailer struct {
	to     string
	bidID  string
	status string
	calls  int
}

func (m *recordMailer) SendBidResolved(toEmail, _, bidID, status, _ string) error {
	m.to, m.bidID, m.status = toEmail, bidID, status
	m.calls++
	return nil
}

type testApp struct {
	engine *gin.Engine
	db     *gorm.DB
	jwter  *auth.JWTer
	mailer *recordMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1, // 内存库只能单连接
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.RefreshToken{}, &domain.Bid{}, &domain.Comment{},
	))

	l := zap.NewNop()
	jwter := &auth.JWTer{
		Secret:     []byte("router-test-secret"),
		Issuer:     "bids-api",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	}

	users := repo.NewUserRepo(db)
	tokens := repo.NewTokenRepo(db)
	bids := repo.NewBidRepo(db)
	comments := repo.NewCommentRepo(db)
	mailer := &recordMailer{}

	uploadDir := t.TempDir()
	h := router.Handlers{
		Auth:    handler.NewAuthHandler(service.NewAuthService(users, tokens, jwter, l), uploadDir, l),
		User:    handler.NewUserHandler(service.NewUserService(users, tokens, l), uploadDir, l),
		Bid:     handler.NewBidHandler(service.NewBidService(bids, users, nil, mailer, l)),
		Comment: handler.NewCommentHandler(service.NewCommentService(comments, bids, users)),
	}
	engine := router.New(l, jwter, h, router.Options{Env: "test"})
	return &testApp{engine: engine, db: db, jwter: jwter, mailer: mailer}
}

func (a *testApp) doForm(t *testing.T, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func (a *testApp) signup(t *testing.T, username, email, password string, admin bool) {
	t.Helper()
	form := url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	}
	if admin {
		form.Set("isAdmin", "true")
	}
	w := a.doForm(t, http.MethodPost, "/api/v1/auth/signup", "", form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (a *testApp) signin(t *testing.T, username, password string) string {
	t.Helper()
	w := a.doJSON(t, http.MethodPost, "/api/v1/auth/signin", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok, _ := decode(t, w)["accessToken"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func (a *testApp) refreshRows(t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(&domain.RefreshToken{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func (a *testApp) userID(t *testing.T, token string) string {
	t.Helper()
	claims, err := a.jwter.Decode(token)
	require.NoError(t, err)
	return claims.UserID
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice", "alice@example.com", "pass123", false)

	t.Run("重复注册返回400", func(t *testing.T) {
		w := app.doForm(t, http.MethodPost, "/api/v1/auth/signup", "", url.Values{
			"username": {"alice"}, "email": {"other@example.com"}, "password": {"pass123"},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "User already exists", decode(t, w)["message"])
	})

	t.Run("密码错误返回401", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/signin", "",
			map[string]string{"username": "alice", "password": "nope"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Wrong password!", decode(t, w)["message"])
	})

	t.Run("用户不存在返回404", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/signin", "",
			map[string]string{"username": "ghost", "password": "pass123"})
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "User not found!", decode(t, w)["message"])
	})

	t.Run("邮箱也能登录", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/signin", "",
			map[string]string{"email": "alice@example.com", "password": "pass123"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	token := app.signin(t, "alice", "pass123")
	uid := app.userID(t, token)

	t.Run("重复登录refresh行不增多", func(t *testing.T) {
		app.signin(t, "alice", "pass123")
		app.signin(t, "alice", "pass123")
		require.EqualValues(t, 1, app.refreshRows(t, uid))
	})

	t.Run("refresh轮换access但不动refresh行", func(t *testing.T) {
		var before domain.RefreshToken
		require.NoError(t, app.db.Where("user_id = ?", uid).First(&before).Error)

		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NotEmpty(t, decode(t, w)["accessToken"])

		var after domain.RefreshToken
		require.NoError(t, app.db.Where("user_id = ?", uid).First(&after).Error)
		require.Equal(t, before.Token, after.Token)
	})

	t.Run("缺Authorization头返回401", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Access token not found!", decode(t, w)["message"])
	})

	t.Run("坏token返回401", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", "garbage", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Access token is not valid!", decode(t, w)["message"])
	})

	t.Run("signout幂等", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/signout", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = app.doJSON(t, http.MethodPost, "/api/v1/auth/signout", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.EqualValues(t, 0, app.refreshRows(t, uid))
	})

	t.Run("signout后refresh返回401", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Refresh token not found! User is not signed in.", decode(t, w)["message"])
	})
}

func TestRefreshTokenValidation(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "bob", "bob@example.com", "pass123", false)
	token := app.signin(t, "bob", "pass123")
	uid := app.userID(t, token)

	t.Run("存储的refresh被篡改则删行并401", func(t *testing.T) {
		forged := &auth.JWTer{Secret: []byte("wrong-secret"), Issuer: "bids-api", RefreshTTL: time.Hour}
		bad, err := forged.IssueRefresh(uid)
		require.NoError(t, err)
		require.NoError(t, app.db.Model(&domain.RefreshToken{}).
			Where("user_id = ?", uid).Update("token", bad).Error)

		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Refresh token is not valid! User is not signed in.", decode(t, w)["message"])
		require.EqualValues(t, 0, app.refreshRows(t, uid))
	})

	t.Run("存储的refresh过期同样删行并401", func(t *testing.T) {
		app.signin(t, "bob", "pass123")
		expired := &auth.JWTer{Secret: app.jwter.Secret, Issuer: "bids-api", RefreshTTL: -2 * time.Minute}
		old, err := expired.IssueRefresh(uid)
		require.NoError(t, err)
		require.NoError(t, app.db.Model(&domain.RefreshToken{}).
			Where("user_id = ?", uid).Update("token", old).Error)

		w := app.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.EqualValues(t, 0, app.refreshRows(t, uid))
	})
}

func TestUserProfile(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "carol", "carol@example.com", "pass123", false)
	token := app.signin(t, "carol", "pass123")

	t.Run("查看资料不含密码", func(t *testing.T) {
		w := app.doJSON(t, http.MethodGet, "/api/v1/user/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		require.Equal(t, "carol", body["username"])
		require.NotContains(t, body, "password")
	})

	t.Run("更新资料只改给出的字段", func(t *testing.T) {
		w := app.doForm(t, http.MethodPut, "/api/v1/user/profile", token, url.Values{
			"firstName": {"Carol"}, "gender": {"female"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		require.Equal(t, "Carol", body["firstName"])
		require.Equal(t, "female", body["gender"])
		require.Equal(t, "carol", body["username"])
	})

	t.Run("软删后无法登录", func(t *testing.T) {
		w := app.doJSON(t, http.MethodDelete, "/api/v1/user/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = app.doJSON(t, http.MethodPost, "/api/v1/auth/signin", "",
			map[string]string{"username": "carol", "password": "pass123"})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("恢复需要正确密码", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPatch, "/api/v1/user/profile/restore", "",
			map[string]string{"username": "carol", "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Password is not valid!", decode(t, w)["message"])

		w = app.doJSON(t, http.MethodPatch, "/api/v1/user/profile/restore", "",
			map[string]string{"username": "carol", "password": "pass123"})
		require.Equal(t, http.StatusOK, w.Code)

		app.signin(t, "carol", "pass123")
	})
}

func TestBids(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "dave", "dave@example.com", "pass123", false)
	app.signup(t, "erin", "erin@example.com", "pass123", true)
	userTok := app.signin(t, "dave", "pass123")
	adminTok := app.signin(t, "erin", "pass123")

	t.Run("匿名不能创建", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/bids", "", map[string]string{"message": "help"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var bidID string
	t.Run("创建后可查询", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, "/api/v1/bids", userTok, map[string]string{"message": "printer is on fire"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		bidID, _ = decode(t, w)["id"].(string)
		require.NotEmpty(t, bidID)

		w = app.doJSON(t, http.MethodGet, "/api/v1/bids/"+bidID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		require.Equal(t, "pending", body["status"])
		require.Equal(t, "printer is on fire", body["message"])

		w = app.doJSON(t, http.MethodGet, "/api/v1/bids", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.EqualValues(t, 1, decode(t, w)["count"])
	})

	t.Run("不存在的bid返回404", func(t *testing.T) {
		w := app.doJSON(t, http.MethodGet, "/api/v1/bids/nope", "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "Bid not found!", decode(t, w)["message"])
	})

	t.Run("status必须是resolved或rejected", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPatch, "/api/v1/bids/"+bidID, adminTok,
			map[string]string{"status": "done"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "Status must be resolved or rejected!", decode(t, w)["message"])
	})

	t.Run("非管理员不能处理", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPatch, "/api/v1/bids/"+bidID, userTok,
			map[string]string{"status": "resolved"})
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "Only admins can resolve requests!", decode(t, w)["message"])
	})

	t.Run("管理员处理并触发邮件", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPatch, "/api/v1/bids/"+bidID, adminTok,
			map[string]string{"status": "resolved", "comment": "replaced the printer"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		require.Equal(t, 1, app.mailer.calls)
		require.Equal(t, "dave@example.com", app.mailer.to)
		require.Equal(t, bidID, app.mailer.bidID)
		require.Equal(t, "resolved", app.mailer.status)

		w = app.doJSON(t, http.MethodGet, "/api/v1/bids/"+bidID, "", nil)
		body := decode(t, w)
		require.Equal(t, "resolved", body["status"])
		require.NotEmpty(t, body["resolvedBy"])
		require.Equal(t, "replaced the printer", body["comment"])
	})

	t.Run("非管理员不能删除", func(t *testing.T) {
		w := app.doJSON(t, http.MethodDelete, "/api/v1/bids/"+bidID, userTok, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "Only admins can delete requests!", decode(t, w)["message"])
	})

	t.Run("管理员删除后查询404", func(t *testing.T) {
		w := app.doJSON(t, http.MethodDelete, "/api/v1/bids/"+bidID, adminTok, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = app.doJSON(t, http.MethodGet, "/api/v1/bids/"+bidID, "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		// 重复删除同样 404
		w = app.doJSON(t, http.MethodDelete, "/api/v1/bids/"+bidID, adminTok, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestComments(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "frank", "frank@example.com", "pass123", false)
	app.signup(t, "grace", "grace@example.com", "pass123", false)
	frankTok := app.signin(t, "frank", "pass123")
	graceTok := app.signin(t, "grace", "pass123")

	w := app.doJSON(t, http.MethodPost, "/api/v1/bids", frankTok, map[string]string{"message": "need a new chair"})
	require.Equal(t, http.StatusCreated, w.Code)
	bidID, _ := decode(t, w)["id"].(string)
	base := "/api/v1/bids/" + bidID + "/comments"

	t.Run("空列表返回404", func(t *testing.T) {
		w := app.doJSON(t, http.MethodGet, base, "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "Comments not found!", decode(t, w)["message"])
	})

	var commentID string
	t.Run("创建后可列出", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPost, base, frankTok, map[string]string{"message": "any chair will do"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		commentID, _ = decode(t, w)["id"].(string)
		require.NotEmpty(t, commentID)

		w = app.doJSON(t, http.MethodGet, base, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.EqualValues(t, 1, decode(t, w)["count"])
	})

	t.Run("改不了别人的评论", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPatch, base+"/"+commentID, graceTok,
			map[string]string{"message": "hijacked"})
		require.Equal(t, http.StatusOK, w.Code) // 旧 API 行为：条件不匹配时静默不落库

		var cm domain.Comment
		require.NoError(t, app.db.First(&cm, "id = ?", commentID).Error)
		require.Equal(t, "any chair will do", cm.Message)
	})

	t.Run("删不了别人的评论", func(t *testing.T) {
		w := app.doJSON(t, http.MethodDelete, base+"/"+commentID, graceTok, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		var n int64
		require.NoError(t, app.db.Model(&domain.Comment{}).Where("id = ?", commentID).Count(&n).Error)
		require.EqualValues(t, 1, n)
	})

	t.Run("作者可以改和删", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPatch, base+"/"+commentID, frankTok,
			map[string]string{"message": "an ergonomic one please"})
		require.Equal(t, http.StatusOK, w.Code)

		var cm domain.Comment
		require.NoError(t, app.db.First(&cm, "id = ?", commentID).Error)
		require.Equal(t, "an ergonomic one please", cm.Message)

		w = app.doJSON(t, http.MethodDelete, base+"/"+commentID, frankTok, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = app.doJSON(t, http.MethodGet, base, "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("不存在的评论返回404", func(t *testing.T) {
		w := app.doJSON(t, http.MethodPatch, base+"/nope", frankTok, map[string]string{"message": "x"})
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "Comment not found!", decode(t, w)["message"])
	})
}
