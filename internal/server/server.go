// Package server provides the HTTP API bridging to the bisection pipeline.
package server

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/dchest/uniuri"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rustbisect/bisectd/internal/store"
	"github.com/rustbisect/bisectd/pkg/bisect"
)

//go:embed index.html
var indexHTML []byte

// Server exposes job submission and the query API over HTTP.
type Server struct {
	store     store.Store
	submitter *bisect.Submitter

	log *logrus.Logger

	router *gin.Engine
}

// New creates a server submitting jobs to the passed submitter and answering queries from
// the passed store.
func New(st store.Store, submitter *bisect.Submitter, log *logrus.Logger) *Server {
	server := &Server{
		store:     st,
		submitter: submitter,

		log: log,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), server.requestLogger())

	router.GET("/", server.getIndex)
	router.POST("/bisect", server.postBisection)
	router.GET("/bisect", server.getBisections)
	router.GET("/bisect/:id", server.getBisection)

	server.router = router
	return server
}

// Run serves the API on the given port. It blocks until the listener fails.
func (s *Server) Run(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Handler returns the server's routes as a plain http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger logs every handled request with a fresh request id.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := s.log.WithFields(logrus.Fields{
			"request-id": uniuri.New(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})

		c.Next()

		log.WithField("status", c.Writer.Status()).Info("Handled request")
	}
}

func (s *Server) getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
