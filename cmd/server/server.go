package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/jmswan/fivemhub/discord"
	"github.com/jmswan/fivemhub/internal/authflow"
	"github.com/jmswan/fivemhub/internal/entities"
	"github.com/jmswan/fivemhub/internal/profiles"
	"github.com/jmswan/fivemhub/internal/session"
)

const sessionName = "session"

type Server struct {
	cfg    Config
	logger *slog.Logger

	oauthClient *discord.Client
	flow        *authflow.Flow
	profiles    *profiles.Service

	assets        *entities.Repository[entities.Asset]
	posts         *entities.Repository[entities.ForumPost]
	postLikes     *entities.Repository[entities.PostLike]
	reports       *entities.Repository[entities.Report]
	notifications *entities.Repository[entities.Notification]

	feed feedCache
}

func newServer(cfg Config, logger *slog.Logger, db *gorm.DB) (*Server, error) {
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		profiles:      profiles.NewService(db, profiles.NewStaticAdminPolicy(cfg.AdminDiscordIDs)),
		assets:        entities.NewRepository[entities.Asset](db),
		posts:         entities.NewRepository[entities.ForumPost](db),
		postLikes:     entities.NewRepository[entities.PostLike](db),
		reports:       entities.NewRepository[entities.Report](db),
		notifications: entities.NewRepository[entities.Notification](db),
	}

	if cfg.discordReady() == nil {
		client, err := discord.NewClient(discord.ClientArgs{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURI:  cfg.DiscordRedirectURI,
			AuthorizeURL: cfg.discordAuthorizeURL,
			TokenURL:     cfg.discordTokenURL,
			APIBase:      cfg.discordAPIBase,
		})
		if err != nil {
			return nil, err
		}

		s.oauthClient = client
		s.flow = authflow.New(client, s.profiles, logger)
		s.flow.OnAuthChanged(func() {
			logger.Info("authentication changed")
		})
	} else {
		logger.Error("discord credentials missing, login endpoints will answer 500")
	}

	return s, nil
}

func (s *Server) routes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/discord-login", s.handleDiscordLogin)
	api.POST("/discord-callback", s.handleDiscordCallback)
	api.POST("/logout", s.handleLogout)
	api.GET("/me", s.handleMe)

	api.GET("/assets", s.handleListAssets)
	api.POST("/assets", s.handleCreateAsset)
	api.GET("/assets/:id", s.handleGetAsset)
	api.POST("/assets/:id/download", s.handleDownloadAsset)

	api.GET("/forum/posts", s.handleListPosts)
	api.POST("/forum/posts", s.handleCreatePost)
	api.GET("/forum/posts/:id", s.handleGetPost)
	api.POST("/forum/posts/:id/like", s.handleLikePost)
	api.POST("/forum/posts/:id/report", s.handleReportPost)

	api.GET("/notifications", s.handleListNotifications)
	api.POST("/notifications/:id/read", s.handleReadNotification)

	api.GET("/feed", s.handleFeed)
}

func (s *Server) sessionStore(e echo.Context) (*session.Store, func(maxAge int) error, error) {
	sess, err := echosession.Get(sessionName, e)
	if err != nil {
		return nil, nil, err
	}

	save := func(maxAge int) error {
		sess.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
		}
		return sess.Save(e.Request(), e.Response())
	}

	return session.New(gorillaKV{values: sess.Values}), save, nil
}

// gorillaKV adapts one request's cookie session to the session.KV capability.
type gorillaKV struct {
	values map[any]any
}

func (k gorillaKV) Get(key string) (string, bool) {
	v, ok := k.values[key]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

func (k gorillaKV) Set(key, value string) {
	k.values[key] = value
}

func (k gorillaKV) Delete(key string) {
	delete(k.values, key)
}

// currentUser reads the session; a nil identity means unauthenticated.
func (s *Server) currentUser(e echo.Context) (*discord.Identity, error) {
	store, _, err := s.sessionStore(e)
	if err != nil {
		return nil, err
	}

	return store.Current(), nil
}

func (s *Server) requireUser(e echo.Context) (*discord.Identity, error) {
	identity, err := s.currentUser(e)
	if err != nil {
		return nil, err
	}

	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	return identity, nil
}

type feedCache struct {
	mu            sync.RWMutex
	latestPosts   []entities.ForumPost
	popularAssets []entities.Asset
	updatedAt     time.Time
}
