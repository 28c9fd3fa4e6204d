package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"microcasa/internal/session"
)

const sessionKey = "session"

// SessionOpener resolves a session id, creating a session when it is unknown.
type SessionOpener interface {
	Open(id string) (*session.Session, bool, error)
}

// SessionCookie signs session ids into an HS256 JWT carried by a cookie.
type SessionCookie struct {
	Name   string
	Secret []byte
	TTL    time.Duration
}

func (sc SessionCookie) Sign(id string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sc.TTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.Secret)
}

// Parse validates the token and returns the session id it carries.
func (sc SessionCookie) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return sc.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.Subject, nil
}

// RequireSession attaches the caller's session to the context, starting a new
// one when the cookie is missing or invalid. The session stays locked until
// the handler chain returns, so requests of one session run one at a time.
func RequireSession(sessions SessionOpener, sc SessionCookie, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if raw, err := c.Cookie(sc.Name); err == nil && raw != "" {
			if id, err = sc.Parse(raw); err != nil {
				log.Debug("discarding session cookie", zap.Error(err))
			}
		}

		s, created, err := sessions.Open(id)
		if err != nil {
			log.Error("open session", zap.String("session", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}

		if created {
			token, err := sc.Sign(s.ID, time.Now())
			if err != nil {
				log.Error("sign session cookie", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sc.Name, token, int(sc.TTL.Seconds()), "/", "", false, true)
		}

		s.Lock()
		defer s.Unlock()

		c.Set(sessionKey, s)
		c.Next()
	}
}

// Session returns the session set by RequireSession.
func Session(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
