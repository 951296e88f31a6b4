package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	"github.com/veridocs/veridocs/internal/orgcontext"
)

type createOrderRequest struct {
	Notes       string         `json:"notes"`
	DocumentIDs []snowflake.ID `json:"document_ids"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, _ := orgcontext.OrgIDFromContext(c.Request.Context())
	requesterID, _ := orgcontext.UserIDFromContext(c.Request.Context())

	ord, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		OrgID:       orgID,
		RequesterID: requesterID,
		Notes:       strings.TrimSpace(req.Notes),
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ord})
}

func (s *Server) GetOrder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ord, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ord})
}

func (s *Server) ListOrdersForReview(c *gin.Context) {
	orders, err := s.orderSvc.ListForReview(c.Request.Context(), scopeOrgIDs(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (s *Server) ListCompletedOrders(c *gin.Context) {
	orders, err := s.orderSvc.ListCompleted(c.Request.Context(), scopeOrgIDs(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// scopeOrgIDs collects the organizations a listing is scoped to: the caller's
// own org plus any sub-organization ids passed as repeated org_id query
// parameters (master accounts list across their sub-clients this way).
func scopeOrgIDs(c *gin.Context) []snowflake.ID {
	orgID, _ := orgcontext.OrgIDFromContext(c.Request.Context())
	ids := []snowflake.ID{orgID}
	for _, raw := range c.QueryArray("org_id") {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == orgID {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
