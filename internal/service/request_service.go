package service

import (
	"context"
	"errors"
	"time"

	"github.com/support-ticket/request-service/internal/errs"
	"github.com/support-ticket/request-service/internal/model"
	"gorm.io/gorm"
)

// RequestServicer is the persistence contract the handlers depend on.
type RequestServicer interface {
	Create(ctx context.Context, topic, text string) (*model.Request, error)
	GetByID(ctx context.Context, id uint64) (*model.Request, error)
	ListByDate(ctx context.Context, date, from, to *time.Time) ([]model.Request, error)
	Update(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Request, error)
	BulkUpdateStatus(ctx context.Context, from, to model.RequestStatus) (int64, []model.Request, error)
}

// RequestService owns all reads and writes of the requests table. The
// *gorm.DB handle is injected; there is no package-level connection.
type RequestService struct {
	db *gorm.DB
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

func (s *RequestService) Create(ctx context.Context, topic, text string) (*model.Request, error) {
	req := &model.Request{
		Topic:  topic,
		Text:   text,
		Status: model.RequestStatusNew,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) GetByID(ctx context.Context, id uint64) (*model.Request, error) {
	var req model.Request
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListByDate returns requests ordered by creation time ascending. A date
// matches the 24-hour window [date, date+1d); otherwise from/to are applied
// as independent inclusive bounds. No filter returns every row.
func (s *RequestService) ListByDate(ctx context.Context, date, from, to *time.Time) ([]model.Request, error) {
	tx := s.db.WithContext(ctx).Model(&model.Request{})
	if date != nil {
		tx = tx.Where("created_at >= ? AND created_at < ?", *date, date.Add(24*time.Hour))
	} else {
		if from != nil {
			tx = tx.Where("created_at >= ?", *from)
		}
		if to != nil {
			tx = tx.Where("created_at <= ?", *to)
		}
	}
	items := make([]model.Request, 0)
	if err := tx.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a partial change set and returns the refreshed row. GORM
// bumps updated_at as part of Updates.
func (s *RequestService) Update(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Request, error) {
	var req model.Request
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRequestNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&req).Updates(changes).Error; err != nil {
		return nil, err
	}
	// Re-read so callers see the stored values, not the patch.
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// BulkUpdateStatus moves every request in `from` to `to` within a single
// transaction and returns the affected count plus the updated rows ordered
// by creation time.
func (s *RequestService) BulkUpdateStatus(ctx context.Context, from, to model.RequestStatus) (int64, []model.Request, error) {
	updated := make([]model.Request, 0)
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint64
		if err := tx.Model(&model.Request{}).Where("status = ?", from).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Model(&model.Request{}).Where("id IN ?", ids).Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected
		return tx.Where("id IN ?", ids).Order("created_at ASC").Find(&updated).Error
	})
	if err != nil {
		return 0, nil, err
	}
	return count, updated, nil
}
