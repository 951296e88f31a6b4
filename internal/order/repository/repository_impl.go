package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, orgIDs []snowflake.ID, statuses []orderdomain.OrderStatus, orderBy string) ([]orderdomain.Order, error) {
	stmt := db.WithContext(ctx).Where("status IN ?", statuses)
	if len(orgIDs) > 0 {
		stmt = stmt.Where("org_id IN ?", orgIDs)
	}

	var orders []orderdomain.Order
	err := stmt.Order(orderBy).Find(&orders).Error
	return orders, err
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, updates map[string]any) error {
	return db.WithContext(ctx).Model(&orderdomain.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) CountDocumentStatuses(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (orderdomain.StatusCounts, error) {
	type row struct {
		Status documentdomain.DocumentStatus
		N      int64
	}

	var rows []row
	err := db.WithContext(ctx).Model(&documentdomain.Document{}).
		Select("status, COUNT(*) AS n").
		Where("order_id = ?", orderID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return orderdomain.StatusCounts{}, err
	}

	var counts orderdomain.StatusCounts
	for _, r := range rows {
		counts.Total += r.N
		switch r.Status {
		case documentdomain.StatusUploaded:
			counts.Uploaded = r.N
		case documentdomain.StatusProcessing:
			counts.Processing = r.N
		case documentdomain.StatusQAReview:
			counts.QAReview = r.N
		case documentdomain.StatusCompleted:
			counts.Completed = r.N
		case documentdomain.StatusRejected:
			counts.Rejected = r.N
		}
	}
	return counts, nil
}

func (r *repo) NextSequence(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&orderdomain.Order{}).Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}
