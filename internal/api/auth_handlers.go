package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal-go/internal/auth"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/store"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// checkPassword is swapped in tests to observe login comparisons.
var checkPassword = auth.CheckPassword

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	_, err := s.store.UserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	case !errors.Is(err, store.ErrNotFound):
		s.internalError("UserByEmail", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError("HashPassword", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	user := models.User{Email: req.Email, Username: req.Username, Password: hash, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
			return
		}
		s.internalError("CreateUser", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	if !s.setSession(c, user.ID.Hex()) {
		return
	}
	s.logger.Info("User signed up", zap.String("id", user.ID.Hex()))
	c.JSON(http.StatusCreated, gin.H{"message": "User signed in successfully", "success": true, "user": user})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.internalError("UserByEmail", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log in"})
		return
	}
	hash := auth.DummyHash()
	if user != nil {
		hash = user.Password
	}
	if ok := checkPassword(hash, req.Password); user == nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect password or email"})
		return
	}

	if !s.setSession(c, user.ID.Hex()) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User logged in successfully", "success": true})
}

// verifyUser reports whether the session cookie names an existing user. It
// always answers 200; the dashboard branches on status.
func (s *Server) verifyUser(c *gin.Context) {
	token, err := c.Cookie(s.opts.CookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	id, err := s.tokens.Verify(token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}

	ctx, cancel := s.storeContext(c)
	defer cancel()

	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.internalError("UserByID", err)
		}
		c.JSON(http.StatusOK, gin.H{"status": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "user": user.Username})
}

func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, "", -1, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// setSession issues a token for userID and sets the session cookie. The
// dashboard reads the cookie client-side, so it is not HttpOnly.
func (s *Server) setSession(c *gin.Context, userID string) bool {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		s.internalError("Issue", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create session"})
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, token, int(s.tokens.TTL().Seconds()), "/", "", false, false)
	return true
}
