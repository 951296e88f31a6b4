package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() documentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *documentdomain.Document) error {
	return db.WithContext(ctx).Create(doc).Error
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, docs []*documentdomain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(docs).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*documentdomain.Document, error) {
	var doc documentdomain.Document
	err := db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repo) FindByIDUnscoped(ctx context.Context, db *gorm.DB, id snowflake.ID) (*documentdomain.Document, error) {
	var doc documentdomain.Document
	err := db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]documentdomain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var docs []documentdomain.Document
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&docs).Error
	return docs, err
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, status documentdomain.DocumentStatus, orgID snowflake.ID) ([]documentdomain.Document, error) {
	stmt := db.WithContext(ctx).Where("status = ?", status)
	if orgID != 0 {
		stmt = stmt.Where("org_id = ?", orgID)
	}

	var docs []documentdomain.Document
	// Oldest first: the review queue is FIFO.
	err := stmt.Order("updated_at ASC").Find(&docs).Error
	return docs, err
}

func (r *repo) ListByOrganization(ctx context.Context, db *gorm.DB, orgID snowflake.ID, before *documentdomain.ListCursor, limit int) ([]documentdomain.Document, error) {
	stmt := db.WithContext(ctx).Where("org_id = ?", orgID)
	if before != nil {
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID)
	}

	var docs []documentdomain.Document
	err := stmt.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&docs).Error
	return docs, err
}

func (r *repo) ListDeleted(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]documentdomain.Document, error) {
	stmt := db.WithContext(ctx).Unscoped().Where("deleted_at IS NOT NULL")
	if orgID != 0 {
		stmt = stmt.Where("org_id = ?", orgID)
	}

	var docs []documentdomain.Document
	err := stmt.Order("deleted_at DESC").Find(&docs).Error
	return docs, err
}

func (r *repo) ClaimForOperator(ctx context.Context, db *gorm.DB, id, operatorID snowflake.ID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&documentdomain.Document{}).
		Where("id = ? AND status IN ?", id, []documentdomain.DocumentStatus{
			documentdomain.StatusUploaded,
			documentdomain.StatusRejected,
		}).
		Updates(map[string]any{
			"status":         documentdomain.StatusProcessing,
			"assigned_to_id": operatorID,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []documentdomain.DocumentStatus, to documentdomain.DocumentStatus, updates map[string]any) (bool, error) {
	values := map[string]any{"status": to}
	for k, v := range updates {
		values[k] = v
	}

	res := db.WithContext(ctx).Model(&documentdomain.Document{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ReleaseFromOperator(ctx context.Context, db *gorm.DB, id, operatorID snowflake.ID, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&documentdomain.Document{}).
		Where("id = ? AND status = ? AND assigned_to_id = ?", id, documentdomain.StatusProcessing, operatorID).
		Updates(map[string]any{
			"status":         documentdomain.StatusUploaded,
			"assigned_to_id": nil,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, updates map[string]any) error {
	return db.WithContext(ctx).Model(&documentdomain.Document{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) UpsertQualityReview(ctx context.Context, db *gorm.DB, review *documentdomain.QualityReview) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reviewer_id", "status", "score", "notes", "updated_at",
		}),
	}).Create(review).Error
}

func (r *repo) FindQualityReview(ctx context.Context, db *gorm.DB, documentID snowflake.ID) (*documentdomain.QualityReview, error) {
	var review documentdomain.QualityReview
	err := db.WithContext(ctx).Where("document_id = ?", documentID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&documentdomain.Document{}).Error
}

func (r *repo) Restore(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Unscoped().Model(&documentdomain.Document{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}

func (r *repo) HardDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Where("document_id = ?", id).Delete(&documentdomain.QualityReview{}).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Where("document_id = ?", id).Delete(&activitydomain.DocumentActivity{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&documentdomain.Document{}).Error
}
