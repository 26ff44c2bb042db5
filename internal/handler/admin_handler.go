package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blockpress/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Sign in",
	})
}

// Login 处理表单登录
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.auth.Authenticate(username, password)
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid username or password"
		if !errors.Is(err, service.ErrInvalidCredentials) {
			a.logger.Error("login failed", zap.Error(err))
			status = http.StatusInternalServerError
			message = "Sign in is unavailable, try again later"
		}
		a.renderHTML(c, status, "login.html", gin.H{
			"title":    "Sign in",
			"error":    message,
			"username": strings.TrimSpace(username),
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		a.logger.Error("save session", zap.Error(err))
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "Sign in",
			"error": "Could not start a session",
		})
		return
	}

	a.logger.Info("admin signed in", zap.String("username", user.Username))
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout 清除会话并返回登录页
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.logger.Warn("clear session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)

	stats, err := a.dashboardStats()
	if err != nil {
		a.logger.Error("load dashboard stats", zap.Error(err))
		a.renderHTML(c, http.StatusInternalServerError, "dashboard.html", gin.H{
			"title":    "Dashboard",
			"username": session.Get(sessionUsernameKey),
			"error":    "Could not load statistics",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":    "Dashboard",
		"username": session.Get(sessionUsernameKey),
		"stats":    stats,
	})
}

type dashboardStats struct {
	Pages          int64 `json:"pages"`
	PublishedPages int64 `json:"publishedPages"`
	Media          int64 `json:"media"`
	Galleries      int64 `json:"galleries"`
	CacheEntries   int   `json:"cacheEntries"`
}

func (a *API) dashboardStats() (dashboardStats, error) {
	var stats dashboardStats
	var err error
	if stats.Pages, stats.PublishedPages, err = a.pages.Count(); err != nil {
		return stats, err
	}
	if stats.Media, err = a.media.Count(); err != nil {
		return stats, err
	}
	if stats.Galleries, err = a.galleries.Count(); err != nil {
		return stats, err
	}
	stats.CacheEntries = a.cache.Len()
	return stats, nil
}

// GetDashboardStats returns the dashboard counters as JSON.
func (a *API) GetDashboardStats(c *gin.Context) {
	stats, err := a.dashboardStats()
	if err != nil {
		a.fail(c, "load dashboard stats", err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword 修改当前管理员密码
func (a *API) ChangePassword(c *gin.Context) {
	var payload changePasswordRequest
	if !bindJSON(c, &payload, "current and new password are required") {
		return
	}

	userID, ok := sessions.Default(c).Get(sessionUserIDKey).(uint)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := a.auth.ChangePassword(userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		a.fail(c, "change password", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"changed": true})
}

// AuthRequired 校验后台会话。页面请求跳转到登录页，JSON 接口返回 401。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				respondError(c, http.StatusUnauthorized, "authentication required")
			} else {
				c.Redirect(http.StatusFound, "/admin/login")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
