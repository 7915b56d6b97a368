package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"contacts-platform/internal/audit"
	"contacts-platform/internal/auth"
	"contacts-platform/internal/contact"
	"contacts-platform/internal/storage"
	"contacts-platform/internal/user"
	"contacts-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, map the
// error taxonomy to a status, return JSON.
type Handlers struct {
	Sessions *auth.SessionManager
	Users    *user.Service
	Contacts *contact.Service
	Avatars  storage.AvatarStore
	Audit    *audit.Service
}

/* ===================== AUTH ===================== */

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h Handlers) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password (min 8 chars) are required"})
		return
	}

	u, err := h.Users.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "account already exists"})
			return
		}
		h.internalError(c, err)
		return
	}

	h.Audit.Record(c.Request.Context(), audit.EventSignup, u.Email, "", c.ClientIP(), "")
	c.JSON(http.StatusCreated, gin.H{
		"user":   u,
		"detail": "user created, check your email",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	pair, err := h.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case errors.Is(err, auth.ErrEmailNotConfirmed):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "email not confirmed"})
		default:
			h.internalError(c, err)
		}
		return
	}

	h.Audit.Record(c.Request.Context(), audit.EventLogin, req.Email, "", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing refresh token"})
		return
	}

	pair, err := h.Sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRefreshToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		case errors.Is(err, auth.ErrExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidScope):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		default:
			h.internalError(c, err)
		}
		return
	}

	h.Audit.Record(c.Request.Context(), audit.EventTokenRefresh, pair.Email, "", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	})
}

func (h Handlers) Logout(c *gin.Context) {
	email, err := auth.Email(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Sessions.Logout(c.Request.Context(), email); err != nil {
		h.internalError(c, err)
		return
	}

	h.Audit.Record(c.Request.Context(), audit.EventLogout, email, "", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"message": "successfully logged out"})
}

func (h Handlers) ConfirmEmail(c *gin.Context) {
	email, err := h.Users.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, user.ErrAlreadyConfirmed):
			c.JSON(http.StatusOK, gin.H{"message": "your email is already confirmed"})
		case errors.Is(err, user.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "verification error"})
		default:
			h.tokenError(c, err)
		}
		return
	}

	h.Audit.Record(c.Request.Context(), audit.EventEmailConfirmed, email, "", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"message": "email confirmed"})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h Handlers) ResendConfirmation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.Users.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, user.ErrAlreadyConfirmed) {
			c.JSON(http.StatusOK, gin.H{"message": "user already confirmed"})
			return
		}
		h.internalError(c, err)
		return
	}

	// Same response whether or not the account exists.
	c.JSON(http.StatusOK, gin.H{"message": "if user exists, a confirmation email has been resent"})
}

func (h Handlers) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.Users.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.internalError(c, err)
		return
	}

	// Same response whether or not the account exists.
	c.JSON(http.StatusOK, gin.H{"message": "check your email for a password reset link"})
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h Handlers) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "new_password (min 8 chars) is required"})
		return
	}

	email, err := h.Users.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.tokenError(c, err)
		return
	}

	h.Audit.Record(c.Request.Context(), audit.EventPasswordReset, email, "", c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"message": "password reset successful"})
}

/* ===================== USERS ===================== */

func (h Handlers) Me(c *gin.Context) {
	email, err := auth.Email(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	u, err := h.Users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h Handlers) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type roleUpdateRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h Handlers) ChangeRole(c *gin.Context) {
	var req roleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	u, err := h.Users.ChangeRole(c.Request.Context(), c.Param("user_id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidRole):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		case errors.Is(err, user.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			h.internalError(c, err)
		}
		return
	}

	actor, _ := auth.Email(c.Request.Context())
	h.Audit.Record(c.Request.Context(), audit.EventRoleChange, u.Email, actor, c.ClientIP(), "role set to "+u.Role)
	c.JSON(http.StatusOK, u)
}

func (h Handlers) UpdateAvatar(c *gin.Context) {
	email, err := auth.Email(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.internalError(c, err)
		return
	}
	defer f.Close()

	url, err := h.Avatars.Save(c.Request.Context(), fh.Filename, f)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported media type"})
			return
		}
		h.internalError(c, err)
		return
	}

	if err := h.Users.UpdateAvatar(c.Request.Context(), email, url); err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

/* ===================== CONTACTS ===================== */

func (h Handlers) CreateContact(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body contact.Contact
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid contact payload"})
		return
	}

	out, err := h.Contacts.Create(c.Request.Context(), userID, body)
	if err != nil {
		h.contactError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) GetContact(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	out, err := h.Contacts.Get(c.Request.Context(), userID, c.Param("contact_id"))
	if err != nil {
		h.contactError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ListContacts(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	out, err := h.Contacts.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		h.contactError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(out))
}

func (h Handlers) UpdateContact(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var upd contact.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid contact payload"})
		return
	}

	out, err := h.Contacts.Update(c.Request.Context(), userID, c.Param("contact_id"), upd)
	if err != nil {
		h.contactError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DeleteContact(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Contacts.Delete(c.Request.Context(), userID, c.Param("contact_id")); err != nil {
		h.contactError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) SearchContacts(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	out, err := h.Contacts.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		h.contactError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(out))
}

func (h Handlers) UpcomingBirthdays(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	out, err := h.Contacts.UpcomingBirthdays(c.Request.Context(), userID, days)
	if err != nil {
		h.contactError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyAsList(out))
}

/* ===================== helpers ===================== */

// tokenError maps action-token verification failures. These surface as 400
// (the token arrived in a link, not an Authorization header).
func (h Handlers) tokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpired):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "token expired"})
	case errors.Is(err, auth.ErrInvalidScope):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid token scope"})
	case errors.Is(err, auth.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
	default:
		h.internalError(c, err)
	}
}

func (h Handlers) contactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contact.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "contact not found"})
	case errors.Is(err, contact.ErrDuplicateEmail):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "contact email already exists"})
	case errors.Is(err, contact.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid argument"})
	default:
		h.internalError(c, err)
	}
}

func (h Handlers) internalError(c *gin.Context, err error) {
	logger.FromGin(c).Error("request failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func emptyAsList(cs []contact.Contact) []contact.Contact {
	if cs == nil {
		return []contact.Contact{}
	}
	return cs
}
