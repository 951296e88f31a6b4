package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	"github.com/veridocs/veridocs/internal/clock"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	"github.com/veridocs/veridocs/internal/storage"
	transformdomain "github.com/veridocs/veridocs/internal/transform/domain"
	"github.com/veridocs/veridocs/internal/transform/engine"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	engine   engine.Engine
	store    storage.Store
	repo     documentdomain.Repository
	activity activitydomain.Service
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Engine   engine.Engine
	Store    storage.Store
	Repo     documentdomain.Repository
	Activity activitydomain.Service
}

func NewService(param ServiceParam) transformdomain.Service {
	return &service{
		db:       param.DB,
		log:      param.Log.Named("transform.service"),
		genID:    param.GenID,
		clock:    param.Clock,
		engine:   param.Engine,
		store:    param.Store,
		repo:     param.Repo,
		activity: param.Activity,
	}
}

func (s *service) MergeDocuments(ctx context.Context, req transformdomain.MergeRequest) (*documentdomain.Document, error) {
	if len(req.DocumentIDs) < 2 {
		return nil, transformdomain.ErrInsufficientInputs
	}
	if req.RequesterID == 0 {
		return nil, documentdomain.ErrInvalidUploader
	}

	sources, err := s.loadSourcesInOrder(ctx, req.DocumentIDs)
	if err != nil {
		return nil, err
	}
	for _, src := range sources[1:] {
		if src.OrgID != sources[0].OrgID {
			return nil, transformdomain.ErrMixedOrganizations
		}
	}

	// Fan out blob fetches; the indexed slice keeps caller order intact.
	buffers := make([][]byte, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			data, err := s.store.GetBytes(gctx, storage.KeyFromURL(src.URL))
			if err != nil {
				return err
			}
			buffers[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := s.engine.Merge(ctx, buffers)
	if err != nil {
		return nil, err
	}
	pageCount, err := s.engine.PageCount(ctx, merged)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Merged - %s", sources[0].Name)
	}

	id := s.genID.Generate()
	url, err := s.store.PutBytes(ctx, fmt.Sprintf("documents/%d.pdf", id), merged, "application/pdf")
	if err != nil {
		return nil, err
	}

	doc := &documentdomain.Document{
		ID:             id,
		Name:           name,
		Type:           documentdomain.DocumentTypePDF,
		Category:       sources[0].Category,
		Status:         documentdomain.StatusUploaded,
		ApprovalStatus: documentdomain.ApprovalPending,
		URL:            url,
		Size:           int64(len(merged)),
		PageCount:      pageCount,
		Source:         documentdomain.SourceMerge,
		// Provenance only; sources stay untouched.
		SourceDocumentIDs: datatypes.NewJSONSlice(req.DocumentIDs),
		OrgID:             sources[0].OrgID,
		// The merge requester owns the result, not the source uploaders.
		UploaderID: req.RequesterID,
		CreatedAt:  s.clock.Now(),
		UpdatedAt:  s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, doc); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, doc.ID, activitydomain.ActionMerged,
		fmt.Sprintf("merged from %d documents", len(sources)))
	s.log.Info("documents merged",
		zap.Int64("document_id", doc.ID.Int64()),
		zap.Int("sources", len(sources)),
		zap.Int("pages", pageCount),
	)
	return doc, nil
}

func (s *service) SplitDocument(ctx context.Context, documentID snowflake.ID) ([]documentdomain.Document, error) {
	src, err := s.repo.FindByID(ctx, s.db, documentID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, documentdomain.ErrDocumentNotFound
	}
	// A recorded single-page document fails before any blob IO; zero means the
	// page count was never captured and the split result decides.
	if src.PageCount == 1 {
		return nil, transformdomain.ErrSinglePageDocument
	}

	data, err := s.store.GetBytes(ctx, storage.KeyFromURL(src.URL))
	if err != nil {
		return nil, err
	}

	pages, err := s.engine.Split(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(pages) < 2 {
		return nil, transformdomain.ErrSinglePageDocument
	}

	// Produce and upload every page first; records are committed in one
	// transaction only after all uploads succeed.
	docs := make([]*documentdomain.Document, 0, len(pages))
	for i, page := range pages {
		id := s.genID.Generate()
		url, err := s.store.PutBytes(ctx, fmt.Sprintf("documents/%d.pdf", id), page, "application/pdf")
		if err != nil {
			return nil, err
		}

		docs = append(docs, &documentdomain.Document{
			ID:                id,
			Name:              fmt.Sprintf("%s - Page %d", src.Name, i+1),
			Type:              documentdomain.DocumentTypePDF,
			Category:          src.Category,
			Status:            documentdomain.StatusUploaded,
			ApprovalStatus:    documentdomain.ApprovalPending,
			URL:               url,
			Size:              int64(len(page)),
			PageCount:         1,
			Source:            documentdomain.SourceSplit,
			SourceDocumentIDs: datatypes.NewJSONSlice([]snowflake.ID{src.ID}),
			OrgID:             src.OrgID,
			UploaderID:        src.UploaderID,
			CreatedAt:         s.clock.Now(),
			UpdatedAt:         s.clock.Now(),
		})
	}

	if err := s.repo.InsertBatch(ctx, s.db, docs); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, src.ID, activitydomain.ActionSplit,
		fmt.Sprintf("split into %d pages", len(pages)))
	s.log.Info("document split",
		zap.Int64("document_id", src.ID.Int64()),
		zap.Int("pages", len(pages)),
	)

	out := make([]documentdomain.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d)
	}
	return out, nil
}

func (s *service) loadSourcesInOrder(ctx context.Context, ids []snowflake.ID) ([]documentdomain.Document, error) {
	found, err := s.repo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]documentdomain.Document, len(found))
	for _, doc := range found {
		byID[doc.ID] = doc
	}

	ordered := make([]documentdomain.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			return nil, documentdomain.ErrDocumentNotFound
		}
		ordered = append(ordered, doc)
	}
	return ordered, nil
}
