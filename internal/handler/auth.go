package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// IssueToken 用 API Key 换取 JWT
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"apiKey" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.config.Auth.APIKeyHash), []byte(req.APIKey)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.unauthorized(w, r, "API Key 错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 生成 JWT
	now := time.Now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(expiration),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Subject:   "api",
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 同时通过 http-only 的 cookie 返回给浏览器客户端
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		HttpOnly: true,
		Secure:   h.config.Environment == "production",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	h.successResponse(w, r, http.StatusOK, "认证成功", map[string]any{
		"token":     ss,
		"expiresAt": expiration,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Environment == "production",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	h.successResponse(w, r, http.StatusOK, "已退出", nil)
}
