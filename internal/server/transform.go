package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/veridocs/veridocs/internal/orgcontext"
	transformdomain "github.com/veridocs/veridocs/internal/transform/domain"
)

type mergeDocumentsRequest struct {
	DocumentIDs []snowflake.ID `json:"document_ids"`
	Name        string         `json:"name"`
}

func (s *Server) MergeDocuments(c *gin.Context) {
	var req mergeDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	requesterID, _ := orgcontext.UserIDFromContext(c.Request.Context())

	doc, err := s.transformSvc.MergeDocuments(c.Request.Context(), transformdomain.MergeRequest{
		DocumentIDs: req.DocumentIDs,
		RequesterID: requesterID,
		Name:        strings.TrimSpace(req.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (s *Server) SplitDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pages, err := s.transformSvc.SplitDocument(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": pages})
}
