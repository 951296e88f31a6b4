package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/veridocs/veridocs/internal/orgcontext"
)

const (
	headerOrgID  = "X-Org-ID"
	headerUserID = "X-User-ID"
)

// OrgContext resolves the calling organization and user from the gateway
// headers and stashes them on the request context. Identity itself is
// established upstream; this layer only propagates it.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := parseSnowflakeHeader(c, headerOrgID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		if userID, err := parseSnowflakeHeader(c, headerUserID); err == nil {
			ctx = orgcontext.WithUserID(ctx, userID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func parseSnowflakeHeader(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.GetHeader(name))
	if raw == "" {
		return 0, ErrUnauthorized
	}
	return snowflake.ParseString(raw)
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(name, "invalid_"+name, "invalid identifier")
	}
	return id, nil
}
