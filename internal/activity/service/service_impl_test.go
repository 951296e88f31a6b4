package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	"github.com/veridocs/veridocs/internal/clock"
	"github.com/veridocs/veridocs/internal/orgcontext"
	"github.com/veridocs/veridocs/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (activitydomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&activitydomain.DocumentActivity{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
	})
	return svc, db, fake
}

func TestRecord(t *testing.T) {
	svc, db, _ := setupService(t)

	ctx := orgcontext.WithUserID(context.Background(), snowflake.ID(42))
	svc.Record(ctx, snowflake.ID(7), activitydomain.ActionUploaded, "invoice.pdf")

	var entries []activitydomain.DocumentActivity
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Action != activitydomain.ActionUploaded {
		t.Fatalf("expected action %q, got %q", activitydomain.ActionUploaded, entries[0].Action)
	}
	if entries[0].ActorID == nil || *entries[0].ActorID != snowflake.ID(42) {
		t.Fatalf("expected actor 42, got %v", entries[0].ActorID)
	}
}

func TestRecordIgnoresEmptyAction(t *testing.T) {
	svc, db, _ := setupService(t)

	svc.Record(context.Background(), snowflake.ID(7), "  ", "noise")
	svc.Record(context.Background(), snowflake.ID(0), activitydomain.ActionUploaded, "no document")

	var count int64
	if err := db.Model(&activitydomain.DocumentActivity{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no entries, got %d", count)
	}
}

func TestListPaginates(t *testing.T) {
	svc, _, fake := setupService(t)

	docID := snowflake.ID(7)
	for i := 0; i < 5; i++ {
		svc.Record(context.Background(), docID, activitydomain.ActionAssigned, "")
		fake.Advance(time.Minute)
	}

	resp, err := svc.List(context.Background(), activitydomain.ListActivitiesRequest{
		Pagination: pagination.Pagination{PageSize: 3},
		DocumentID: docID,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.Activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(resp.Activities))
	}
	if !resp.HasMore || resp.NextPageToken == "" {
		t.Fatalf("expected a next page token")
	}
	// Newest first.
	if !resp.Activities[0].CreatedAt.After(resp.Activities[2].CreatedAt) {
		t.Fatalf("expected newest-first ordering")
	}

	rest, err := svc.List(context.Background(), activitydomain.ListActivitiesRequest{
		Pagination: pagination.Pagination{PageSize: 3, PageToken: resp.NextPageToken},
		DocumentID: docID,
	})
	if err != nil {
		t.Fatalf("List second page: %v", err)
	}
	if len(rest.Activities) != 2 {
		t.Fatalf("expected 2 remaining activities, got %d", len(rest.Activities))
	}
	if rest.HasMore {
		t.Fatalf("expected final page")
	}
}

func TestListPaginatesSameTimestamp(t *testing.T) {
	svc, _, _ := setupService(t)

	// All five entries share one created_at; the cursor must not drop any of
	// them between pages.
	docID := snowflake.ID(7)
	for i := 0; i < 5; i++ {
		svc.Record(context.Background(), docID, activitydomain.ActionAssigned, "")
	}

	seen := make(map[snowflake.ID]bool)
	first, err := svc.List(context.Background(), activitydomain.ListActivitiesRequest{
		Pagination: pagination.Pagination{PageSize: 3},
		DocumentID: docID,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first.Activities) != 3 || !first.HasMore {
		t.Fatalf("expected a full first page, got %d entries", len(first.Activities))
	}
	for _, a := range first.Activities {
		seen[a.ID] = true
	}

	rest, err := svc.List(context.Background(), activitydomain.ListActivitiesRequest{
		Pagination: pagination.Pagination{PageSize: 3, PageToken: first.NextPageToken},
		DocumentID: docID,
	})
	if err != nil {
		t.Fatalf("List second page: %v", err)
	}
	if len(rest.Activities) != 2 || rest.HasMore {
		t.Fatalf("expected 2 remaining entries, got %d", len(rest.Activities))
	}
	for _, a := range rest.Activities {
		if seen[a.ID] {
			t.Fatalf("entry %d returned twice", a.ID)
		}
		seen[a.ID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("expected all 5 entries across pages, got %d", len(seen))
	}
}

func TestListInvalidPageToken(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.List(context.Background(), activitydomain.ListActivitiesRequest{
		Pagination: pagination.Pagination{PageToken: "not-a-token"},
		DocumentID: snowflake.ID(7),
	})
	if !errors.Is(err, activitydomain.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestListRequiresDocument(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.List(context.Background(), activitydomain.ListActivitiesRequest{})
	if !errors.Is(err, activitydomain.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}
