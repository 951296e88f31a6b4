package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	activityservice "github.com/veridocs/veridocs/internal/activity/service"
	billingservice "github.com/veridocs/veridocs/internal/billing/service"
	"github.com/veridocs/veridocs/internal/clock"
	"github.com/veridocs/veridocs/internal/config"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	documentrepository "github.com/veridocs/veridocs/internal/document/repository"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	orderrepository "github.com/veridocs/veridocs/internal/order/repository"
	orderservice "github.com/veridocs/veridocs/internal/order/service"
	organizationdomain "github.com/veridocs/veridocs/internal/organization/domain"
	organizationrepository "github.com/veridocs/veridocs/internal/organization/repository"
	"github.com/veridocs/veridocs/internal/orgcontext"
	"github.com/veridocs/veridocs/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&organizationdomain.Organization{},
		&organizationdomain.Package{},
		&organizationdomain.Subscription{},
		&documentdomain.Document{},
		&documentdomain.QualityReview{},
		&activitydomain.DocumentActivity{},
		&orderdomain.Order{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

type testEnv struct {
	db      *gorm.DB
	svc     documentdomain.Service
	orders  orderdomain.Service
	clock   *clock.FakeClock
	sampled *bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	cfg := config.Config{
		QASampleRate:         0.10,
		UploadCreditCost:     1,
		ExtractionCreditCost: 1,
	}

	billing := billingservice.NewService(billingservice.ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  organizationrepository.Provide(),
	})
	activity := activityservice.NewService(activityservice.ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
	})
	docRepo := documentrepository.Provide()
	orders := orderservice.NewService(orderservice.ServiceParam{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		Repo:         orderrepository.Provide(),
		DocumentRepo: docRepo,
	})

	sampled := false
	svc := NewService(ServiceParam{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    fake,
		Config:   cfg,
		Repo:     docRepo,
		Billing:  billing,
		Activity: activity,
		Orders:   orders,
		Sampler:  func(rate float64) bool { return sampled },
	})

	return &testEnv{db: db, svc: svc, orders: orders, clock: fake, sampled: &sampled}
}

// One node for all seeded fixtures: fresh nodes restart their sequence, so
// back-to-back seeds within a millisecond would collide on the primary key.
var seedNode, _ = snowflake.NewNode(2)

func seedOrg(t *testing.T, db *gorm.DB, orgType organizationdomain.OrganizationType, credits int64) snowflake.ID {
	t.Helper()
	org := organizationdomain.Organization{
		ID:      seedNode.Generate(),
		Name:    "acme",
		Type:    orgType,
		Status:  organizationdomain.OrganizationStatusActive,
		Credits: credits,
	}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
	return org.ID
}

func seedDoc(t *testing.T, db *gorm.DB, orgID snowflake.ID, status documentdomain.DocumentStatus) snowflake.ID {
	t.Helper()
	doc := documentdomain.Document{
		ID:             seedNode.Generate(),
		Name:           "invoice.pdf",
		Type:           documentdomain.DocumentTypePDF,
		Category:       documentdomain.CategorySalesInvoice,
		Status:         status,
		ApprovalStatus: documentdomain.ApprovalPending,
		URL:            "gs://bucket/invoice.pdf",
		Size:           1024,
		PageCount:      1,
		Source:         documentdomain.SourceUpload,
		OrgID:          orgID,
		UploaderID:     snowflake.ID(900),
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc.ID
}

func authCtx(orgID, userID snowflake.ID) context.Context {
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	return orgcontext.WithUserID(ctx, userID)
}

func TestCreateDocument(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 3)
	ctx := authCtx(orgID, snowflake.ID(700))

	doc, err := env.svc.Create(ctx, documentdomain.CreateDocumentRequest{
		Name:      "invoice.pdf",
		Type:      documentdomain.DocumentTypePDF,
		URL:       "gs://bucket/invoice.pdf",
		Size:      2048,
		PageCount: 2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Status != documentdomain.StatusUploaded {
		t.Fatalf("expected UPLOADED, got %s", doc.Status)
	}
	if doc.Category != documentdomain.CategoryOther {
		t.Fatalf("expected default category OTHER, got %s", doc.Category)
	}
	if doc.UploaderID != snowflake.ID(700) {
		t.Fatalf("expected uploader 700, got %d", doc.UploaderID)
	}

	// Upload is metered: one credit gone.
	var org organizationdomain.Organization
	if err := env.db.First(&org, "id = ?", orgID).Error; err != nil {
		t.Fatalf("reload org: %v", err)
	}
	if org.Credits != 2 {
		t.Fatalf("expected credits 2, got %d", org.Credits)
	}

	var activities int64
	err = env.db.Model(&activitydomain.DocumentActivity{}).
		Where("document_id = ? AND action = ?", doc.ID, activitydomain.ActionUploaded).
		Count(&activities).Error
	if err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if activities != 1 {
		t.Fatalf("expected 1 upload activity, got %d", activities)
	}
}

func TestCreateDocumentInsufficientCredits(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 0)
	ctx := authCtx(orgID, snowflake.ID(700))

	_, err := env.svc.Create(ctx, documentdomain.CreateDocumentRequest{
		Name: "invoice.pdf",
		Type: documentdomain.DocumentTypePDF,
		URL:  "gs://bucket/invoice.pdf",
	})
	if !errors.Is(err, documentdomain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	var docs int64
	if err := env.db.Model(&documentdomain.Document{}).Count(&docs).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if docs != 0 {
		t.Fatalf("expected no documents, got %d", docs)
	}
}

func TestCreateDocumentMissingContext(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), documentdomain.CreateDocumentRequest{Name: "x"})
	if !errors.Is(err, documentdomain.ErrInvalidOrganization) {
		t.Fatalf("expected ErrInvalidOrganization, got %v", err)
	}
}

func TestListByOrganizationPaginatesSameTimestamp(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 5)
	ctx := authCtx(orgID, snowflake.ID(700))

	// The fake clock never moves, so all five uploads share one created_at;
	// the cursor must not drop any of them between pages.
	for i := 0; i < 5; i++ {
		_, err := env.svc.Create(ctx, documentdomain.CreateDocumentRequest{
			Name: fmt.Sprintf("doc-%d.pdf", i),
			Type: documentdomain.DocumentTypePDF,
			URL:  "gs://bucket/doc.pdf",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	seen := make(map[snowflake.ID]bool)
	first, err := env.svc.ListByOrganization(ctx, documentdomain.ListByOrganizationRequest{
		Pagination: pagination.Pagination{PageSize: 3},
		OrgID:      orgID,
	})
	if err != nil {
		t.Fatalf("ListByOrganization: %v", err)
	}
	if len(first.Documents) != 3 || !first.HasMore {
		t.Fatalf("expected a full first page, got %d documents", len(first.Documents))
	}
	for _, d := range first.Documents {
		seen[d.ID] = true
	}

	rest, err := env.svc.ListByOrganization(ctx, documentdomain.ListByOrganizationRequest{
		Pagination: pagination.Pagination{PageSize: 3, PageToken: first.NextPageToken},
		OrgID:      orgID,
	})
	if err != nil {
		t.Fatalf("ListByOrganization second page: %v", err)
	}
	if len(rest.Documents) != 2 || rest.HasMore {
		t.Fatalf("expected 2 remaining documents, got %d", len(rest.Documents))
	}
	for _, d := range rest.Documents {
		if seen[d.ID] {
			t.Fatalf("document %d returned twice", d.ID)
		}
		seen[d.ID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("expected all 5 documents across pages, got %d", len(seen))
	}
}

func TestAssign(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	docID := seedDoc(t, env.db, orgID, documentdomain.StatusUploaded)
	ctx := context.Background()

	operatorA := snowflake.ID(501)
	operatorB := snowflake.ID(502)

	if err := env.svc.Assign(ctx, docID, operatorA); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	doc, err := env.svc.Get(ctx, docID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Status != documentdomain.StatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", doc.Status)
	}
	if doc.AssignedToID == nil || *doc.AssignedToID != operatorA {
		t.Fatalf("expected assignee %d, got %v", operatorA, doc.AssignedToID)
	}

	// Same operator again is a no-op success.
	if err := env.svc.Assign(ctx, docID, operatorA); err != nil {
		t.Fatalf("re-assign to holder: %v", err)
	}

	// A different operator cannot take over without a release.
	err = env.svc.Assign(ctx, docID, operatorB)
	if !errors.Is(err, documentdomain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	var transErr *documentdomain.InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if transErr.Current != documentdomain.StatusProcessing {
		t.Fatalf("expected current PROCESSING, got %s", transErr.Current)
	}
}

func TestAssignConcurrentExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	docID := seedDoc(t, env.db, orgID, documentdomain.StatusUploaded)

	operators := []snowflake.ID{501, 502}
	results := make([]error, len(operators))

	var wg sync.WaitGroup
	for i, op := range operators {
		wg.Add(1)
		go func(i int, op snowflake.ID) {
			defer wg.Done()
			results[i] = env.svc.Assign(context.Background(), docID, op)
		}(i, op)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, documentdomain.ErrInvalidTransition):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner, got %d wins %d losses", wins, losses)
	}
}

func TestAssignDeletedDocument(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	docID := seedDoc(t, env.db, orgID, documentdomain.StatusUploaded)
	ctx := context.Background()

	if err := env.svc.SoftDelete(ctx, docID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	err := env.svc.Assign(ctx, docID, snowflake.ID(501))
	if !errors.Is(err, documentdomain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRelease(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	docID := seedDoc(t, env.db, orgID, documentdomain.StatusUploaded)
	ctx := context.Background()

	operatorA := snowflake.ID(501)
	operatorB := snowflake.ID(502)

	if err := env.svc.Assign(ctx, docID, operatorA); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// Only the holder can release.
	err := env.svc.Release(ctx, docID, operatorB)
	if !errors.Is(err, documentdomain.ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}

	if err := env.svc.Release(ctx, docID, operatorA); err != nil {
		t.Fatalf("Release: %v", err)
	}

	doc, err := env.svc.Get(ctx, docID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Status != documentdomain.StatusUploaded {
		t.Fatalf("expected UPLOADED after release, got %s", doc.Status)
	}
	if doc.AssignedToID != nil {
		t.Fatalf("expected assignee cleared, got %v", doc.AssignedToID)
	}

	// Released documents are claimable by anyone again.
	if err := env.svc.Assign(ctx, docID, operatorB); err != nil {
		t.Fatalf("Assign after release: %v", err)
	}
}

func TestSubmitForReviewRouting(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	ctx := context.Background()

	t.Run("sampled goes to qa", func(t *testing.T) {
		docID := seedDoc(t, env.db, orgID, documentdomain.StatusProcessing)
		*env.sampled = true

		status, err := env.svc.SubmitForReview(ctx, docID)
		if err != nil {
			t.Fatalf("SubmitForReview: %v", err)
		}
		if status != documentdomain.StatusQAReview {
			t.Fatalf("expected QA_REVIEW, got %s", status)
		}
	})

	t.Run("unsampled completes directly", func(t *testing.T) {
		docID := seedDoc(t, env.db, orgID, documentdomain.StatusProcessing)
		*env.sampled = false

		status, err := env.svc.SubmitForReview(ctx, docID)
		if err != nil {
			t.Fatalf("SubmitForReview: %v", err)
		}
		if status != documentdomain.StatusCompleted {
			t.Fatalf("expected COMPLETED, got %s", status)
		}
	})

	t.Run("illegal from uploaded", func(t *testing.T) {
		docID := seedDoc(t, env.db, orgID, documentdomain.StatusUploaded)

		_, err := env.svc.SubmitForReview(ctx, docID)
		if !errors.Is(err, documentdomain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestApplyQAOutcome(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	ctx := context.Background()

	t.Run("passed completes", func(t *testing.T) {
		docID := seedDoc(t, env.db, orgID, documentdomain.StatusQAReview)

		err := env.svc.ApplyQAOutcome(ctx, documentdomain.ApplyQAOutcomeRequest{
			DocumentID: docID,
			ReviewerID: snowflake.ID(601),
			Outcome:    documentdomain.QAPassed,
			Score:      90,
		})
		if err != nil {
			t.Fatalf("ApplyQAOutcome: %v", err)
		}

		doc, err := env.svc.Get(ctx, docID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if doc.Status != documentdomain.StatusCompleted {
			t.Fatalf("expected COMPLETED, got %s", doc.Status)
		}
		if doc.QAStatus != documentdomain.QAPassed {
			t.Fatalf("expected qa status PASSED, got %s", doc.QAStatus)
		}
	})

	t.Run("failed rejects", func(t *testing.T) {
		docID := seedDoc(t, env.db, orgID, documentdomain.StatusQAReview)

		err := env.svc.ApplyQAOutcome(ctx, documentdomain.ApplyQAOutcomeRequest{
			DocumentID: docID,
			ReviewerID: snowflake.ID(601),
			Outcome:    documentdomain.QAFailed,
			Score:      20,
			Notes:      "illegible scan",
		})
		if err != nil {
			t.Fatalf("ApplyQAOutcome: %v", err)
		}

		doc, err := env.svc.Get(ctx, docID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if doc.Status != documentdomain.StatusRejected {
			t.Fatalf("expected REJECTED, got %s", doc.Status)
		}
		if doc.QAStatus != documentdomain.QAFailed {
			t.Fatalf("expected qa status FAILED, got %s", doc.QAStatus)
		}
		if doc.RejectionReason == nil || *doc.RejectionReason != "illegible scan" {
			t.Fatalf("expected rejection reason, got %v", doc.RejectionReason)
		}
	})

	t.Run("score out of range", func(t *testing.T) {
		docID := seedDoc(t, env.db, orgID, documentdomain.StatusQAReview)

		err := env.svc.ApplyQAOutcome(ctx, documentdomain.ApplyQAOutcomeRequest{
			DocumentID: docID,
			ReviewerID: snowflake.ID(601),
			Outcome:    documentdomain.QAPassed,
			Score:      101,
		})
		if !errors.Is(err, documentdomain.ErrInvalidScore) {
			t.Fatalf("expected ErrInvalidScore, got %v", err)
		}
	})
}

func TestApplyQAOutcomeUpsertsSingleReview(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	ctx := context.Background()

	docID := seedDoc(t, env.db, orgID, documentdomain.StatusQAReview)

	err := env.svc.ApplyQAOutcome(ctx, documentdomain.ApplyQAOutcomeRequest{
		DocumentID: docID,
		ReviewerID: snowflake.ID(601),
		Outcome:    documentdomain.QAFailed,
		Score:      30,
	})
	if err != nil {
		t.Fatalf("first outcome: %v", err)
	}

	// Correction loop: rejected documents route back through assignment.
	if err := env.svc.Assign(ctx, docID, snowflake.ID(501)); err != nil {
		t.Fatalf("Assign after rejection: %v", err)
	}
	*env.sampled = true
	if _, err := env.svc.SubmitForReview(ctx, docID); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	err = env.svc.ApplyQAOutcome(ctx, documentdomain.ApplyQAOutcomeRequest{
		DocumentID: docID,
		ReviewerID: snowflake.ID(602),
		Outcome:    documentdomain.QAPassed,
		Score:      85,
	})
	if err != nil {
		t.Fatalf("second outcome: %v", err)
	}

	var reviews []documentdomain.QualityReview
	if err := env.db.Where("document_id = ?", docID).Find(&reviews).Error; err != nil {
		t.Fatalf("load reviews: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected exactly one review, got %d", len(reviews))
	}
	if reviews[0].Status != documentdomain.QAPassed || reviews[0].Score != 85 {
		t.Fatalf("expected latest review to win, got %s score %d", reviews[0].Status, reviews[0].Score)
	}
	if reviews[0].ReviewerID != snowflake.ID(602) {
		t.Fatalf("expected reviewer 602, got %d", reviews[0].ReviewerID)
	}
}

func TestSoftDeleteRestore(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	docID := seedDoc(t, env.db, orgID, documentdomain.StatusProcessing)
	ctx := context.Background()

	if err := env.svc.SoftDelete(ctx, docID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	// Deleted documents are invisible to default queries.
	_, err := env.svc.Get(ctx, docID)
	if !errors.Is(err, documentdomain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	listed, err := env.svc.ListByStatus(ctx, documentdomain.ListByStatusRequest{
		Status: documentdomain.StatusProcessing,
		OrgID:  orgID,
	})
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected deleted document hidden, got %d", len(listed))
	}

	deleted, err := env.svc.ListDeleted(ctx, orgID)
	if err != nil {
		t.Fatalf("ListDeleted: %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != docID {
		t.Fatalf("expected document in recycle bin, got %v", deleted)
	}

	if err := env.svc.Restore(ctx, docID); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	// Status survives the delete/restore round trip.
	doc, err := env.svc.Get(ctx, docID)
	if err != nil {
		t.Fatalf("Get after restore: %v", err)
	}
	if doc.Status != documentdomain.StatusProcessing {
		t.Fatalf("expected PROCESSING after restore, got %s", doc.Status)
	}

	err = env.svc.Restore(ctx, docID)
	if !errors.Is(err, documentdomain.ErrDocumentNotDeleted) {
		t.Fatalf("expected ErrDocumentNotDeleted, got %v", err)
	}
}

func TestPurge(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	docID := seedDoc(t, env.db, orgID, documentdomain.StatusCompleted)
	ctx := context.Background()

	url, err := env.svc.Purge(ctx, docID)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if url != "gs://bucket/invoice.pdf" {
		t.Fatalf("expected blob url back, got %q", url)
	}

	var count int64
	if err := env.db.Unscoped().Model(&documentdomain.Document{}).Where("id = ?", docID).Count(&count).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected row removed, got %d", count)
	}

	_, err = env.svc.Purge(ctx, docID)
	if !errors.Is(err, documentdomain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound on double purge, got %v", err)
	}
}

func TestUploadThroughQALifecycle(t *testing.T) {
	env := newTestEnv(t)
	orgID := seedOrg(t, env.db, organizationdomain.OrganizationTypeClient, 10)
	ctx := authCtx(orgID, snowflake.ID(700))

	doc, err := env.svc.Create(ctx, documentdomain.CreateDocumentRequest{
		Name: "statement.pdf",
		Type: documentdomain.DocumentTypePDF,
		URL:  "gs://bucket/statement.pdf",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	order, err := env.orders.Create(ctx, orderdomain.CreateOrderRequest{
		OrgID:       orgID,
		RequesterID: snowflake.ID(700),
		DocumentIDs: []snowflake.ID{doc.ID},
	})
	if err != nil {
		t.Fatalf("order Create: %v", err)
	}
	if order.Status != orderdomain.OrderProcessing {
		t.Fatalf("expected order PROCESSING with one uploaded doc, got %s", order.Status)
	}

	if err := env.svc.Assign(ctx, doc.ID, snowflake.ID(501)); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	*env.sampled = true
	status, err := env.svc.SubmitForReview(ctx, doc.ID)
	if err != nil {
		t.Fatalf("SubmitForReview: %v", err)
	}
	if status != documentdomain.StatusQAReview {
		t.Fatalf("expected QA_REVIEW, got %s", status)
	}

	got, err := env.orders.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("order Get: %v", err)
	}
	if got.Status != orderdomain.OrderInReview {
		t.Fatalf("expected order IN_REVIEW, got %s", got.Status)
	}

	err = env.svc.ApplyQAOutcome(ctx, documentdomain.ApplyQAOutcomeRequest{
		DocumentID: doc.ID,
		ReviewerID: snowflake.ID(601),
		Outcome:    documentdomain.QAPassed,
		Score:      90,
	})
	if err != nil {
		t.Fatalf("ApplyQAOutcome: %v", err)
	}

	final, err := env.svc.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != documentdomain.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.Status)
	}
	if final.QAStatus != documentdomain.QAPassed {
		t.Fatalf("expected qa PASSED, got %s", final.QAStatus)
	}

	// The only document completed, so the owning order completes with it.
	got, err = env.orders.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("order Get: %v", err)
	}
	if got.Status != orderdomain.OrderCompleted {
		t.Fatalf("expected order COMPLETED, got %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatalf("expected completed_at set")
	}
}
