package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var errBadParam = errors.New("invalid query parameter")

// queryParams collects parse failures so a handler reports the first one.
type queryParams struct {
	c   *gin.Context
	err error
}

func newQueryParams(c *gin.Context) *queryParams {
	return &queryParams{c: c}
}

func (q *queryParams) Str(name string) string {
	return strings.TrimSpace(q.c.Query(name))
}

func (q *queryParams) Int(name string) int {
	raw := q.Str(name)
	if raw == "" || q.err != nil {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.err = fmt.Errorf("%w: %s must be an integer", errBadParam, name)
	}
	return v
}

func (q *queryParams) Float(name string) *float64 {
	raw := q.Str(name)
	if raw == "" || q.err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.err = fmt.Errorf("%w: %s must be a number", errBadParam, name)
		return nil
	}
	return &v
}

func (q *queryParams) Bool(name string) *bool {
	raw := q.Str(name)
	if raw == "" || q.err != nil {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.err = fmt.Errorf("%w: %s must be true or false", errBadParam, name)
		return nil
	}
	return &v
}

func (q *queryParams) Date(name string) *time.Time {
	raw := q.Str(name)
	if raw == "" || q.err != nil {
		return nil
	}
	v, err := time.Parse("2006-01-02", raw)
	if err != nil {
		q.err = fmt.Errorf("%w: %s must be YYYY-MM-DD", errBadParam, name)
		return nil
	}
	return &v
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadParam),
		errors.Is(err, domain.ErrUnknownMarketplace),
		errors.Is(err, domain.ErrInvalidHorizon),
		errors.Is(err, domain.ErrInvalidOverride),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidDemandMode),
		errors.Is(err, domain.ErrSKURequired),
		errors.Is(err, domain.ErrInvalidScenario),
		errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
