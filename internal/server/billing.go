package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/veridocs/veridocs/internal/orgcontext"
)

type assignSubscriptionRequest struct {
	PackageID snowflake.ID `json:"package_id"`
}

func (s *Server) AssignSubscription(c *gin.Context) {
	var req assignSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, _ := orgcontext.OrgIDFromContext(c.Request.Context())

	sub, err := s.billingSvc.AssignSubscription(c.Request.Context(), orgID, req.PackageID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}
