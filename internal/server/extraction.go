package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ExtractDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.extractionSvc.Extract(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
