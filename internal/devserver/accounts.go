package devserver

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/carescope/internal/auth"
)

type account struct {
	user auth.User
	hash []byte
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

const userKey = "user"

func (s *Server) register(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid payload"})
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Name is required"})
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Please include a valid email"})
		return
	}
	if len(in.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Please enter a password with 6 or more characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[email]; exists {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"msg": "User already exists"})
		return
	}
	acct := &account{
		user: auth.User{ID: uuid.NewString(), Name: in.Name, Email: email},
		hash: hash,
	}
	s.accounts[email] = acct
	s.mu.Unlock()

	s.issue(c, http.StatusCreated, acct.user)
}

func (s *Server) login(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid payload"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	s.mu.RLock()
	acct, ok := s.accounts[email]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(in.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid Credentials"})
		return
	}
	s.issue(c, http.StatusOK, acct.user)
}

func (s *Server) issue(c *gin.Context, status int, u auth.User) {
	token, err := s.sign(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	c.JSON(status, gin.H{"token": token, "user": u})
}

func (s *Server) sign(u auth.User) (string, error) {
	now := s.now()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	claims.User.ID = u.ID
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireToken validates x-auth-token and stores the account on the context.
func (s *Server) requireToken(c *gin.Context) {
	raw := c.GetHeader("x-auth-token")
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
		return
	}

	var claims auth.Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
		return
	}

	s.mu.RLock()
	var found *auth.User
	for _, a := range s.accounts {
		if a.user.ID == claims.User.ID {
			u := a.user
			found = &u
			break
		}
	}
	s.mu.RUnlock()
	if found == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
		return
	}
	c.Set(userKey, *found)
	c.Next()
}

func (s *Server) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet(userKey).(auth.User))
}
