package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/support-ticket/request-service/internal/errs"
	"github.com/support-ticket/request-service/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Request{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, svc *RequestService, topic, text string) *model.Request {
	t.Helper()
	req, err := svc.Create(context.Background(), topic, text)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return req
}

func TestCreateDefaultsToNew(t *testing.T) {
	svc := NewRequestService(newTestDB(t))
	req := mustCreate(t, svc, "printer broken", "it prints blank pages")

	if req.ID == 0 {
		t.Error("expected assigned id")
	}
	if req.Status != model.RequestStatusNew {
		t.Errorf("status = %q, want %q", req.Status, model.RequestStatusNew)
	}
	if req.Solution != "" || req.CancellationReason != "" {
		t.Error("new request must not carry solution or cancellation reason")
	}
	if req.CreatedAt.IsZero() || req.UpdatedAt.IsZero() {
		t.Error("timestamps must be set on creation")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := NewRequestService(newTestDB(t))
	if _, err := svc.GetByID(context.Background(), 42); !errors.Is(err, errs.ErrRequestNotFound) {
		t.Errorf("err = %v, want ErrRequestNotFound", err)
	}
}

func TestUpdateAppliesPatchAndRefreshes(t *testing.T) {
	svc := NewRequestService(newTestDB(t))
	req := mustCreate(t, svc, "vpn", "cannot connect")

	updated, err := svc.Update(context.Background(), req.ID, map[string]interface{}{
		"status":   model.RequestStatusDone,
		"solution": "restarted the gateway",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.RequestStatusDone {
		t.Errorf("status = %q, want done", updated.Status)
	}
	if updated.Solution != "restarted the gateway" {
		t.Errorf("solution = %q", updated.Solution)
	}
	if updated.Topic != "vpn" || updated.Text != "cannot connect" {
		t.Error("untouched fields must survive a partial update")
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewRequestService(newTestDB(t))
	_, err := svc.Update(context.Background(), 7, map[string]interface{}{"status": model.RequestStatusDone})
	if !errors.Is(err, errs.ErrRequestNotFound) {
		t.Errorf("err = %v, want ErrRequestNotFound", err)
	}
}

func seedAt(t *testing.T, db *gorm.DB, topic string, createdAt time.Time) uint64 {
	t.Helper()
	req := &model.Request{
		Topic:     topic,
		Text:      "text",
		Status:    model.RequestStatusNew,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := db.Create(req).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return req.ID
}

func TestListByDateWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)

	before := seedAt(t, db, "before", time.Date(2024, 1, 4, 23, 59, 0, 0, time.UTC))
	inside := seedAt(t, db, "inside", time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))
	edge := seedAt(t, db, "edge", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	after := seedAt(t, db, "after", time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC))

	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	items, err := svc.ListByDate(context.Background(), &date, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := map[uint64]bool{}
	for _, it := range items {
		got[it.ID] = true
	}
	if !got[inside] || !got[edge] {
		t.Errorf("rows inside [date, date+1d) missing: %v", got)
	}
	if got[before] || got[after] {
		t.Errorf("rows outside the window returned: %v", got)
	}
}

func TestListByRangeIndependentBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)

	jan1 := seedAt(t, db, "jan1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	jan15 := seedAt(t, db, "jan15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	feb1 := seedAt(t, db, "feb1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	items, err := svc.ListByDate(context.Background(), nil, &from, &to)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != jan1 || items[1].ID != jan15 {
		t.Errorf("range query returned %v, want [jan1 jan15] ascending", items)
	}

	// from-only lower bound
	onlyFrom := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	items, err = svc.ListByDate(context.Background(), nil, &onlyFrom, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != feb1 {
		t.Errorf("from-only query returned %v, want [feb1]", items)
	}

	// no filter returns everything
	items, err = svc.ListByDate(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("unfiltered query returned %d rows, want 3", len(items))
	}
}

func TestListOrderedByCreationAscending(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)

	// Insert newest first to prove ordering is explicit, not insertion order.
	seedAt(t, db, "late", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	seedAt(t, db, "early", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	items, err := svc.ListByDate(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].Topic != "early" || items[1].Topic != "late" {
		t.Errorf("items not ordered by created_at ascending: %v", items)
	}
}

func TestBulkUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	a := mustCreate(t, svc, "a", "text")
	b := mustCreate(t, svc, "b", "text")
	c := mustCreate(t, svc, "c", "text")

	for _, id := range []uint64{a.ID, b.ID} {
		if _, err := svc.Update(ctx, id, map[string]interface{}{"status": model.RequestStatusInProgress}); err != nil {
			t.Fatalf("take: %v", err)
		}
	}

	count, rows, err := svc.BulkUpdateStatus(ctx, model.RequestStatusInProgress, model.RequestStatusCancelled)
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if count != 2 || len(rows) != 2 {
		t.Fatalf("count = %d, rows = %d, want 2/2", count, len(rows))
	}
	for _, row := range rows {
		if row.Status != model.RequestStatusCancelled {
			t.Errorf("row %d status = %q, want cancelled", row.ID, row.Status)
		}
	}

	// Rows in other statuses stay untouched.
	untouched, err := svc.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if untouched.Status != model.RequestStatusNew {
		t.Errorf("unrelated row status = %q, want new", untouched.Status)
	}

	// Second run finds nothing.
	count, rows, err = svc.BulkUpdateStatus(ctx, model.RequestStatusInProgress, model.RequestStatusCancelled)
	if err != nil {
		t.Fatalf("second bulk update: %v", err)
	}
	if count != 0 || len(rows) != 0 {
		t.Errorf("second run: count = %d, rows = %d, want 0/0", count, len(rows))
	}
}
