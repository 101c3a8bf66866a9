package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rustbisect/bisectd/pkg/bisect"
)

// dateFormat is the date layout of the start and end query parameters.
const dateFormat = "2006-01-02"

// internalErrorText is the only error detail exposed for store and pipeline faults.
const internalErrorText = "internal error"

type jobIDResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

func (s *Server) postBisection(c *gin.Context) {
	options, err := parseOptions(c)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	code, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read request body")
		return
	}

	id, err := s.submitter.Submit(string(code), options)
	if errors.Is(err, bisect.ErrQueueFull) {
		c.String(http.StatusTooManyRequests, "Too many jobs in the queue already")
		return
	} else if err != nil {
		s.log.Errorf("Failed to submit job - %v", err)
		c.String(http.StatusInternalServerError, internalErrorText)
		return
	}

	c.JSON(http.StatusAccepted, jobIDResponse{JobID: id})
}

func (s *Server) getBisection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "%s is not a valid job id", c.Param("id"))
		return
	}

	record, err := s.store.Get(id)
	if err != nil {
		s.log.Errorf("Failed to get bisection %s - %v", id, err)
		c.String(http.StatusInternalServerError, internalErrorText)
		return
	}

	// An unknown id is an empty result, not an error
	if record == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) getBisections(c *gin.Context) {
	records, err := s.store.List()
	if err != nil {
		s.log.Errorf("Failed to list bisections - %v", err)
		c.String(http.StatusInternalServerError, internalErrorText)
		return
	}

	if records == nil {
		records = []bisect.Bisection{}
	}
	c.JSON(http.StatusOK, records)
}

// parseOptions derives the job options from the request's query parameters.
func parseOptions(c *gin.Context) (bisect.Options, error) {
	var options bisect.Options

	start := c.Query("start")
	if start == "" {
		return options, fmt.Errorf("missing required query parameter start")
	}
	startDate, err := time.Parse(dateFormat, start)
	if err != nil {
		return options, fmt.Errorf("%s is not a valid start date", start)
	}
	options.Start = startDate

	if end := c.Query("end"); end != "" {
		endDate, err := time.Parse(dateFormat, end)
		if err != nil {
			return options, fmt.Errorf("%s is not a valid end date", end)
		}
		options.End = &endDate
	}

	options.Kind = c.Query("kind")

	return options, nil
}
