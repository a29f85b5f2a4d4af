// Package httpapi exposes the restroom services as a JSON API over gin.
// Each client's login lives in a signed cookie session.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/restroom/internal/app"
	"github.com/mesh-intelligence/restroom/internal/auth"
	"github.com/mesh-intelligence/restroom/internal/ingest"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

const (
	sessionName    = "restroom_session"
	sessionUserKey = "username"
	// sessionClientKey identifies the client for ingest generations. It
	// outlives logins.
	sessionClientKey = "client"
	ctxSessionKey    = "restroom.session"
)

// ErrSecretMissing is returned by NewRouter without a session secret.
var ErrSecretMissing = errors.New("http session secret must not be empty")

// Handler serves the API routes.
type Handler struct {
	app *app.App
	log zerolog.Logger
}

// NewRouter builds the gin engine with sessions, logging and all routes.
func NewRouter(a *app.App, secret string, log zerolog.Logger) (*gin.Engine, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	h := &Handler{app: a, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(loadSession())

	r.POST("/signup", h.SignUp)
	r.POST("/login", h.LogIn)
	r.POST("/logout", h.LogOut)
	r.GET("/me", h.Me)

	r.POST("/places", h.IngestPlaces)
	r.GET("/facilities", h.ListFacilities)
	r.GET("/nearest", h.Nearest)

	facility := r.Group("/facilities/:placeID")
	{
		facility.GET("", h.GetFacility)
		facility.GET("/comments", h.ListComments)
		facility.POST("/comments", h.AddComment)
		facility.GET("/codes", h.ListCodes)
		facility.POST("/codes", h.AddCode)
		facility.GET("/note", h.GetNote)
		facility.PUT("/note", h.SetNote)
	}

	r.POST("/codes/:codeID/votes", h.CastVote)

	return r, nil
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// loadSession binds an auth.Session for this request from the cookie.
func loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		name, _ := sessions.Default(c).Get(sessionUserKey).(string)
		c.Set(ctxSessionKey, auth.NewSession(name))
		c.Next()
	}
}

func session(c *gin.Context) *auth.Session {
	if v, ok := c.Get(ctxSessionKey); ok {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return &auth.Session{}
}

// saveSession writes the request session back into the cookie.
func saveSession(c *gin.Context) error {
	cs := sessions.Default(c)
	if name, ok := session(c).User(); ok {
		cs.Set(sessionUserKey, name)
	} else {
		cs.Delete(sessionUserKey)
	}
	return cs.Save()
}

// clientID returns this client's id, assigning and saving one on first use.
func clientID(c *gin.Context) (string, error) {
	cs := sessions.Default(c)
	if id, ok := cs.Get(sessionClientKey).(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	cs.Set(sessionClientKey, id)
	if err := cs.Save(); err != nil {
		return "", err
	}
	return id, nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotAuthenticated),
		errors.Is(err, types.ErrUnknownUsername),
		errors.Is(err, types.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, types.ErrFacilityNotFound),
		errors.Is(err, types.ErrCodeNotFound),
		errors.Is(err, types.ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidUsername),
		errors.Is(err, types.ErrInvalidPlaceID),
		errors.Is(err, types.ErrInvalidCoordinate),
		errors.Is(err, types.ErrInvalidVoteType),
		errors.Is(err, types.ErrInvalidContent),
		errors.Is(err, types.ErrInvalidData):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrStaleGeneration):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
