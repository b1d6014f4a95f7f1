package api

import (
	"net/http"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/handler/httperr"
	"rental-engine/internal/handler/middleware"
	"rental-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errUnauthenticated = errs.New("request has no authenticated user")

// currentActor aborts with 401 when the auth middleware did not run.
func currentActor(c *gin.Context) (actor.Actor, bool) {
	a, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Unauthorized", nil)
		return actor.Actor{}, false
	}
	return a, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// validator is implemented by request bodies with rules binding tags cannot
// express, such as amounts in whole cents.
type validator interface {
	Validate() error
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", gin.H{"reason": err.Error()})
		return false
	}
	if v, ok := req.(validator); ok {
		if err := v.Validate(); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", gin.H{"reason": err.Error()})
			return false
		}
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", gin.H{"reason": err.Error()})
		return false
	}
	return true
}

// render writes body, or a 500 when the response could not be assembled.
func render[T any](c *gin.Context, status int, body T, err error) {
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(status, body)
}
