package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"loadwatch/ports"
)

// Server exposes the latest pipeline output over HTTP. It reads
// whatever the most recent run persisted; it never computes.
type Server struct {
	router     *gin.Engine
	results    ports.ResultReader
	tracked    []string
	categories []string
}

// NewServer builds the router. tracked and categories mirror the
// pipeline configuration so report handlers know which columns exist.
func NewServer(results ports.ResultReader, tracked, categories []string) *Server {
	s := &Server{
		router:     gin.Default(),
		results:    results,
		tracked:    tracked,
		categories: categories,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	apiGroup := s.router.Group("/api")
	{
		apiGroup.GET("/daily", s.handleDaily)
		apiGroup.GET("/weekly/players", s.handleWeeklyPlayers)
		apiGroup.GET("/weekly/teams", s.handleWeeklyTeams)
		apiGroup.GET("/players/:player/report", s.handlePlayerReport)
		apiGroup.GET("/teams/:team/overview", s.handleTeamOverview)
	}
}

// Run starts the server on the given port.
func (s *Server) Run(port string) error {
	return s.router.Run(fmt.Sprintf(":%s", port))
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
