// Package server is the HTTP surface: the chat endpoint plus the REST
// routes the frontend uses for tasks and conversations.
package server

import (
	"fmt"

	"aria/app/client/postgres"
	"aria/app/client/rediscache"
	"aria/app/config"
	"aria/app/service/chat"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Server)(nil)

type Server struct {
	app   *fiber.App
	cfg   *config.Config
	chat  *chat.Service
	db    *postgres.Client
	cache *rediscache.Client
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:   do.MustInvoke[*config.Config](di),
		chat:  do.MustInvoke[*chat.Service](di),
		db:    do.MustInvoke[*postgres.Client](di),
		cache: do.MustInvoke[*rediscache.Client](di),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())

	origins := s.cfg.Server.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/", s.handleHealth)
	app.Post("/chat", s.handleChat)
	app.Get("/chat/greet", s.handleGreet)

	api := app.Group("/api")
	api.Get("/tasks", s.handleGetTasks)
	// must be registered before the :id route
	api.Delete("/tasks/clear_completed", s.handleClearCompletedTasks)
	api.Delete("/tasks/:id", s.handleDeleteTask)
	api.Patch("/tasks/:id/status", s.handleSetTaskStatus)
	api.Get("/conversations", s.handleGetConversations)
	api.Get("/conversations/:id", s.handleGetConversation)
	api.Get("/conversations/:id/summary", s.handleSummarizeConversation)

	s.app = app

	return s, nil
}

func (s *Server) Run() error {
	return s.app.Listen(fmt.Sprintf(":%d", s.cfg.Server.Port))
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
