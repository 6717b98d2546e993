package rental

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	product "github.com/siegrin/basecamp-backend/internal/products"
	"github.com/siegrin/basecamp-backend/pkg/db"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/logger"
)

type recordedEvent struct {
	action  enums.ActivityAction
	details map[string]any
}

type stubRecorder struct {
	events []recordedEvent
}

func (s *stubRecorder) Record(_ context.Context, input activity.RecordInput) {
	s.events = append(s.events, recordedEvent{action: input.Action, details: input.Details})
}

type stubAnalytics struct {
	totals []decimal.Decimal
	err    error
}

func (s *stubAnalytics) RecordRentalCompleted(_ context.Context, total decimal.Decimal) error {
	if s.err != nil {
		return s.err
	}
	s.totals = append(s.totals, total)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:rentals_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ddl := []string{
		`CREATE TABLE products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category_id TEXT NOT NULL,
			subcategory_id TEXT,
			price_per_day NUMERIC NOT NULL,
			stock INTEGER NOT NULL,
			availability TEXT NOT NULL,
			images TEXT,
			specs TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE rentals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			items TEXT NOT NULL,
			start_date DATETIME,
			end_date DATETIME,
			total NUMERIC NOT NULL,
			status TEXT NOT NULL,
			notes TEXT,
			activated_at DATETIME,
			completed_at DATETIME,
			cancelled_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB, *stubRecorder, *stubAnalytics) {
	t.Helper()
	conn := newTestDB(t)
	recorder := &stubRecorder{}
	analytics := &stubAnalytics{}
	logg := logger.New(logger.Options{ServiceName: "rentals-test", Output: io.Discard})

	svc, err := NewService(db.FromGorm(conn), NewRepository(conn), product.NewRepository(conn), recorder, analytics, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn, recorder, analytics
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:           uuid.New(),
		Name:         name,
		CategoryID:   uuid.New(),
		PricePerDay:  decimal.RequireFromString(price),
		Stock:        stock,
		Availability: enums.AvailabilityForStock(stock),
	}
	if err := conn.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func loadStock(t *testing.T, conn *gorm.DB, id uuid.UUID) (int, enums.Availability) {
	t.Helper()
	var p models.Product
	if err := conn.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.Stock, p.Availability
}

func actor() activity.Actor {
	id := uuid.New()
	return activity.Actor{ID: &id, Name: "admin"}
}

func TestCreateRental_SnapshotsItemsAndTotal(t *testing.T) {
	t.Parallel()
	svc, conn, recorder, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 10)
	stove := seedProduct(t, conn, "Camp Stove", "4.00", 3)

	created, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items: []CreateRentalItemInput{
			{ProductID: tent.ID, Quantity: 2, Days: 3},
			{ProductID: stove.ID, Quantity: 1, Days: 3},
		},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}

	if created.Status != string(enums.RentalStatusPending) {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	// 15.50*3*2 + 4.00*3*1 = 93.00 + 12.00
	if !created.Total.Equal(decimal.RequireFromString("105.00")) {
		t.Fatalf("unexpected total: %s", created.Total)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
	if created.Items[0].Name != "Alpine Tent" || !created.Items[0].Subtotal.Equal(decimal.RequireFromString("93.00")) {
		t.Fatalf("unexpected first item snapshot: %+v", created.Items[0])
	}

	if stock, _ := loadStock(t, conn, tent.ID); stock != 10 {
		t.Fatalf("creation must not touch stock, got %d", stock)
	}

	if len(recorder.events) != 1 || recorder.events[0].action != enums.ActionRentalCreated {
		t.Fatalf("expected rental_created event, got %+v", recorder.events)
	}
}

func TestCreateRental_Validation(t *testing.T) {
	t.Parallel()
	svc, conn, _, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 5)

	cases := []struct {
		name  string
		input CreateRentalInput
	}{
		{"missing user name", CreateRentalInput{UserID: uuid.New(), Items: []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 1, Days: 1}}}},
		{"no items", CreateRentalInput{UserID: uuid.New(), UserName: "Dina"}},
		{"zero quantity", CreateRentalInput{UserID: uuid.New(), UserName: "Dina", Items: []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 0, Days: 1}}}},
		{"zero days", CreateRentalInput{UserID: uuid.New(), UserName: "Dina", Items: []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 1, Days: 0}}}},
		{"duplicate product", CreateRentalInput{UserID: uuid.New(), UserName: "Dina", Items: []CreateRentalItemInput{
			{ProductID: tent.ID, Quantity: 1, Days: 1},
			{ProductID: tent.ID, Quantity: 1, Days: 1},
		}}},
		{"unknown product", CreateRentalInput{UserID: uuid.New(), UserName: "Dina", Items: []CreateRentalItemInput{{ProductID: uuid.New(), Quantity: 1, Days: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRental(ctx, actor(), tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateRental_InsufficientStockChecksOnly(t *testing.T) {
	t.Parallel()
	svc, conn, _, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 2)

	_, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items:    []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 3, Days: 1}},
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if stock, _ := loadStock(t, conn, tent.ID); stock != 2 {
		t.Fatalf("stock must stay untouched, got %d", stock)
	}
}

func TestActivateRental_AllOrNothing(t *testing.T) {
	t.Parallel()
	svc, conn, _, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 10)
	stove := seedProduct(t, conn, "Camp Stove", "4.00", 2)

	created, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items: []CreateRentalItemInput{
			{ProductID: tent.ID, Quantity: 4, Days: 2},
			{ProductID: stove.ID, Quantity: 2, Days: 2},
		},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}

	// Someone else takes the stoves while the rental sits pending.
	if err := conn.Model(&models.Product{}).Where("id = ?", stove.ID).Update("stock", 1).Error; err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	_, err = svc.ActivateRental(ctx, actor(), created.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	details, ok := coded.Details().(map[string]any)
	if !ok || details["name"] != "Camp Stove" {
		t.Fatalf("expected details naming the offending product, got %+v", coded.Details())
	}

	// The tent decrement must have rolled back with the transaction.
	if stock, _ := loadStock(t, conn, tent.ID); stock != 10 {
		t.Fatalf("expected tent stock back at 10, got %d", stock)
	}

	reloaded, err := svc.GetRental(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload rental: %v", err)
	}
	if reloaded.Status != string(enums.RentalStatusPending) {
		t.Fatalf("rental must stay pending after failed activation, got %s", reloaded.Status)
	}
}

func TestRentalLifecycle_EndToEnd(t *testing.T) {
	t.Parallel()
	svc, conn, recorder, analytics := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 10)

	created, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items:    []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 4, Days: 2}},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	if stock, _ := loadStock(t, conn, tent.ID); stock != 10 {
		t.Fatalf("pending rental must not reserve stock, got %d", stock)
	}

	activated, err := svc.ActivateRental(ctx, actor(), created.ID)
	if err != nil {
		t.Fatalf("activate rental: %v", err)
	}
	if activated.Status != string(enums.RentalStatusActive) || activated.ActivatedAt == nil {
		t.Fatalf("unexpected activated state: %+v", activated)
	}
	if stock, _ := loadStock(t, conn, tent.ID); stock != 6 {
		t.Fatalf("expected stock 6 after activation, got %d", stock)
	}

	completed, err := svc.CompleteRental(ctx, actor(), created.ID)
	if err != nil {
		t.Fatalf("complete rental: %v", err)
	}
	if completed.Status != string(enums.RentalStatusCompleted) || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed state: %+v", completed)
	}
	stock, availability := loadStock(t, conn, tent.ID)
	if stock != 10 || availability != enums.AvailabilityAvailable {
		t.Fatalf("expected full restock, got stock=%d availability=%s", stock, availability)
	}

	if len(analytics.totals) != 1 || !analytics.totals[0].Equal(decimal.RequireFromString("124.00")) {
		t.Fatalf("expected completed total recorded, got %+v", analytics.totals)
	}

	actions := make([]enums.ActivityAction, 0, len(recorder.events))
	for _, event := range recorder.events {
		actions = append(actions, event.action)
	}
	want := []enums.ActivityAction{enums.ActionRentalCreated, enums.ActionRentalActivated, enums.ActionRentalCompleted}
	if len(actions) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("expected event %s at position %d, got %s", want[i], i, actions[i])
		}
	}
}

func TestActivateRental_DrainsAvailability(t *testing.T) {
	t.Parallel()
	svc, conn, _, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 2)

	created, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items:    []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 2, Days: 1}},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	if _, err := svc.ActivateRental(ctx, actor(), created.ID); err != nil {
		t.Fatalf("activate rental: %v", err)
	}

	stock, availability := loadStock(t, conn, tent.ID)
	if stock != 0 || availability != enums.AvailabilityUnavailable {
		t.Fatalf("expected stock 0 unavailable, got stock=%d availability=%s", stock, availability)
	}
}

func TestCancelRental_KeepsStock(t *testing.T) {
	t.Parallel()
	svc, conn, recorder, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 5)
	created, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items:    []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 2, Days: 1}},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}

	cancelled, err := svc.CancelRental(ctx, actor(), created.ID)
	if err != nil {
		t.Fatalf("cancel rental: %v", err)
	}
	if cancelled.Status != string(enums.RentalStatusCancelled) || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancelled state: %+v", cancelled)
	}
	if stock, _ := loadStock(t, conn, tent.ID); stock != 5 {
		t.Fatalf("cancelling a pending rental must not change stock, got %d", stock)
	}
	last := recorder.events[len(recorder.events)-1]
	if last.action != enums.ActionRentalCancelled {
		t.Fatalf("expected rental_cancelled event, got %s", last.action)
	}
}

func TestTransitions_TerminalStatesRejected(t *testing.T) {
	t.Parallel()
	svc, conn, _, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 5)
	created, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items:    []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 1, Days: 1}},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}

	// Completing a pending rental skips activation.
	if _, err := svc.CompleteRental(ctx, actor(), created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict completing pending rental, got %v", err)
	}

	if _, err := svc.ActivateRental(ctx, actor(), created.ID); err != nil {
		t.Fatalf("activate rental: %v", err)
	}
	if _, err := svc.CancelRental(ctx, actor(), created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict cancelling active rental, got %v", err)
	}
	if _, err := svc.CompleteRental(ctx, actor(), created.ID); err != nil {
		t.Fatalf("complete rental: %v", err)
	}

	for name, op := range map[string]func() error{
		"activate completed": func() error { _, err := svc.ActivateRental(ctx, actor(), created.ID); return err },
		"complete completed": func() error { _, err := svc.CompleteRental(ctx, actor(), created.ID); return err },
		"cancel completed":   func() error { _, err := svc.CancelRental(ctx, actor(), created.ID); return err },
	} {
		if err := op(); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("%s: expected state conflict, got %v", name, err)
		}
	}
}

func TestCompleteRental_AnalyticsFailureDoesNotUndo(t *testing.T) {
	t.Parallel()
	svc, conn, _, analytics := newTestService(t)
	analytics.err = context.DeadlineExceeded
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 5)
	created, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
		UserID:   uuid.New(),
		UserName: "Dina",
		Items:    []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 1, Days: 1}},
	})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	if _, err := svc.ActivateRental(ctx, actor(), created.ID); err != nil {
		t.Fatalf("activate rental: %v", err)
	}

	completed, err := svc.CompleteRental(ctx, actor(), created.ID)
	if err != nil {
		t.Fatalf("complete rental should survive analytics failure: %v", err)
	}
	if completed.Status != string(enums.RentalStatusCompleted) {
		t.Fatalf("expected completed rental, got %s", completed.Status)
	}
}

func TestResetRentals(t *testing.T) {
	t.Parallel()
	svc, conn, recorder, _ := newTestService(t)
	ctx := context.Background()

	tent := seedProduct(t, conn, "Alpine Tent", "15.50", 5)
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateRental(ctx, actor(), CreateRentalInput{
			UserID:   uuid.New(),
			UserName: "Dina",
			Items:    []CreateRentalItemInput{{ProductID: tent.ID, Quantity: 1, Days: 1}},
		}); err != nil {
			t.Fatalf("create rental: %v", err)
		}
	}

	removed, err := svc.ResetRentals(ctx, actor())
	if err != nil {
		t.Fatalf("reset rentals: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	last := recorder.events[len(recorder.events)-1]
	if last.action != enums.ActionRentalsReset || last.details["removed"] != int64(3) {
		t.Fatalf("expected rentals_reset event with count, got %+v", last)
	}
}
