package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	"github.com/veridocs/veridocs/internal/clock"
	"github.com/veridocs/veridocs/internal/orgcontext"
	"github.com/veridocs/veridocs/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

func NewService(p ServiceParam) activitydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

// Record implements domain.Service.
func (s *Service) Record(ctx context.Context, documentID snowflake.ID, action, details string) {
	action = strings.TrimSpace(action)
	if documentID == 0 || action == "" {
		return
	}

	entry := activitydomain.DocumentActivity{
		ID:         s.genID.Generate(),
		DocumentID: documentID,
		Action:     action,
		Details:    details,
		CreatedAt:  s.clock.Now(),
	}
	if actorID, ok := orgcontext.UserIDFromContext(ctx); ok {
		entry.ActorID = &actorID
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Warn("failed to record document activity",
			zap.Int64("document_id", int64(documentID)),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context, req activitydomain.ListActivitiesRequest) (activitydomain.ListActivitiesResponse, error) {
	if req.DocumentID == 0 {
		return activitydomain.ListActivitiesResponse{}, activitydomain.ErrInvalidDocument
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 250 {
		pageSize = 250
	}

	stmt := s.db.WithContext(ctx).
		Where("document_id = ?", req.DocumentID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize + 1)

	if strings.TrimSpace(req.PageToken) != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return activitydomain.ListActivitiesResponse{}, activitydomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return activitydomain.ListActivitiesResponse{}, activitydomain.ErrInvalidPageToken
		}
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return activitydomain.ListActivitiesResponse{}, activitydomain.ErrInvalidPageToken
		}
		// The id tiebreak keeps rows sharing a timestamp from being skipped
		// across pages.
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, cursorID)
	}

	var items []activitydomain.DocumentActivity
	if err := stmt.Find(&items).Error; err != nil {
		return activitydomain.ListActivitiesResponse{}, err
	}

	resp := activitydomain.ListActivitiesResponse{}
	if len(items) > pageSize {
		items = items[:pageSize]
		last := items[len(items)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.Format(time.RFC3339Nano),
		})
		if err == nil {
			resp.NextPageToken = token
			resp.HasMore = true
		}
	}
	resp.Activities = items
	return resp, nil
}
