package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	"github.com/veridocs/veridocs/internal/orgcontext"
	"github.com/veridocs/veridocs/internal/storage"
	"github.com/veridocs/veridocs/pkg/db/pagination"
	"go.uber.org/zap"
)

type createDocumentRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	PageCount int    `json:"page_count"`
}

type assignDocumentRequest struct {
	OperatorID snowflake.ID `json:"operator_id"`
}

type qaOutcomeRequest struct {
	ReviewerID snowflake.ID `json:"reviewer_id"`
	Outcome    string       `json:"outcome"`
	Score      int          `json:"score"`
	Notes      string       `json:"notes"`
}

type updateCategoryRequest struct {
	Category string `json:"category"`
}

type updateApprovalRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (s *Server) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.documentSvc.Create(c.Request.Context(), documentdomain.CreateDocumentRequest{
		Name:      strings.TrimSpace(req.Name),
		Type:      documentdomain.DocumentType(strings.TrimSpace(req.Type)),
		Category:  documentdomain.DocumentCategory(strings.TrimSpace(req.Category)),
		URL:       strings.TrimSpace(req.URL),
		Size:      req.Size,
		PageCount: req.PageCount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (s *Server) GetDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.documentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// ListDocuments serves two shapes: a status-filtered work queue when ?status=
// is present, otherwise the organization's cursor-paginated listing.
func (s *Server) ListDocuments(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, _ := orgcontext.OrgIDFromContext(c.Request.Context())

	if status := strings.TrimSpace(query.Status); status != "" {
		docs, err := s.documentSvc.ListByStatus(c.Request.Context(), documentdomain.ListByStatusRequest{
			Status: documentdomain.DocumentStatus(status),
			OrgID:  orgID,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": docs})
		return
	}

	resp, err := s.documentSvc.ListByOrganization(c.Request.Context(), documentdomain.ListByOrganizationRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		OrgID: orgID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDeletedDocuments(c *gin.Context) {
	orgID, _ := orgcontext.OrgIDFromContext(c.Request.Context())

	docs, err := s.documentSvc.ListDeleted(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}

func (s *Server) AssignDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	operatorID, err := s.resolveOperator(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.documentSvc.Assign(c.Request.Context(), id, operatorID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "assigned"})
}

func (s *Server) ReleaseDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	operatorID, err := s.resolveOperator(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.documentSvc.Release(c.Request.Context(), id, operatorID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "released"})
}

// resolveOperator prefers an explicit operator_id in the body and falls back
// to the authenticated user.
func (s *Server) resolveOperator(c *gin.Context) (snowflake.ID, error) {
	var req assignDocumentRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.OperatorID != 0 {
		return req.OperatorID, nil
	}
	if userID, ok := orgcontext.UserIDFromContext(c.Request.Context()); ok {
		return userID, nil
	}
	return 0, documentdomain.ErrInvalidOperator
}

func (s *Server) SubmitDocumentForReview(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status, err := s.documentSvc.SubmitForReview(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": status}})
}

func (s *Server) ApplyQAOutcome(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req qaOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reviewerID := req.ReviewerID
	if reviewerID == 0 {
		reviewerID, _ = orgcontext.UserIDFromContext(c.Request.Context())
	}

	err = s.documentSvc.ApplyQAOutcome(c.Request.Context(), documentdomain.ApplyQAOutcomeRequest{
		DocumentID: id,
		ReviewerID: reviewerID,
		Outcome:    documentdomain.QAReviewStatus(strings.TrimSpace(req.Outcome)),
		Score:      req.Score,
		Notes:      strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reviewed"})
}

func (s *Server) UpdateDocumentCategory(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	category := documentdomain.DocumentCategory(strings.TrimSpace(req.Category))
	if err := s.documentSvc.UpdateCategory(c.Request.Context(), id, category); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) UpdateDocumentApproval(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := documentdomain.ApprovalStatus(strings.TrimSpace(req.Status))
	if err := s.documentSvc.UpdateApprovalStatus(c.Request.Context(), id, status, strings.TrimSpace(req.Reason)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) SoftDeleteDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.documentSvc.SoftDelete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) RestoreDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.documentSvc.Restore(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "restored"})
}

func (s *Server) PurgeDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	url, err := s.documentSvc.Purge(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The record is already gone; an orphaned blob is recoverable garbage.
	if url != "" {
		if err := s.store.Delete(c.Request.Context(), storage.KeyFromURL(url)); err != nil {
			s.log.Warn("purge left orphaned blob",
				zap.String("url", url),
				zap.Error(err),
			)
		}
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListDocumentActivities(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.activitySvc.List(c.Request.Context(), activitydomain.ListActivitiesRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		DocumentID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
