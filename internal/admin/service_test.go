package admin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/farmdirect/farmdirect-backend/pkg/migrate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newAdminFixture(t *testing.T) (*db.Client, *Service) {
	t.Helper()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "admin_test.sqlite"),
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(migrate.AllModels...); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("failed to build admin service: %v", err)
	}
	return client, svc
}

func TestGetStats(t *testing.T) {
	client, svc := newAdminFixture(t)

	farmer := models.User{ID: uuid.New(), Mobile: "9876543210", Name: "Farmer", Role: enums.RoleFarmer, Status: enums.UserStatusActive}
	retailer := models.User{ID: uuid.New(), Mobile: "9123456780", Name: "Retailer", Role: enums.RoleRetailer, Status: enums.UserStatusActive}
	for _, u := range []models.User{farmer, retailer} {
		if err := client.DB().Create(&u).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	active := models.Product{ID: uuid.New(), FarmerID: farmer.ID, Name: "Wheat", Quantity: 10, PricePerUnit: decimal.NewFromInt(25), Images: "[]", Status: enums.ProductStatusActive}
	delisted := models.Product{ID: uuid.New(), FarmerID: farmer.ID, Name: "Old", Quantity: 0, PricePerUnit: decimal.NewFromInt(10), Images: "[]", Status: enums.ProductStatusDelisted}
	for _, p := range []models.Product{active, delisted} {
		p := p
		if err := client.DB().Create(&p).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	paid := models.Order{
		ID: uuid.New(), OrderNumber: "ORD-20250901-000001",
		FarmerID: farmer.ID, RetailerID: retailer.ID, ProductID: active.ID,
		Quantity: 5, UnitPrice: decimal.NewFromInt(25), TotalAmount: decimal.NewFromInt(125),
		Status: enums.OrderStatusDelivered, PaymentStatus: enums.PaymentStatusPaid,
	}
	unpaid := models.Order{
		ID: uuid.New(), OrderNumber: "ORD-20250901-000002",
		FarmerID: farmer.ID, RetailerID: retailer.ID, ProductID: active.ID,
		Quantity: 2, UnitPrice: decimal.NewFromInt(25), TotalAmount: decimal.NewFromInt(50),
		Status: enums.OrderStatusPending, PaymentStatus: enums.PaymentStatusPending,
	}
	for _, o := range []models.Order{paid, unpaid} {
		o := o
		if err := client.DB().Create(&o).Error; err != nil {
			t.Fatalf("failed to seed order: %v", err)
		}
	}

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Users != 2 {
		t.Fatalf("expected 2 users, got %d", stats.Users)
	}
	if stats.Orders != 2 {
		t.Fatalf("expected 2 orders, got %d", stats.Orders)
	}
	if stats.ActiveProducts != 1 {
		t.Fatalf("expected 1 active product, got %d", stats.ActiveProducts)
	}
	if !stats.Revenue.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("expected revenue 125 from settled orders only, got %s", stats.Revenue)
	}
}

func TestGetStatsEmptyPlatform(t *testing.T) {
	_, svc := newAdminFixture(t)

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Users != 0 || stats.Orders != 0 || stats.ActiveProducts != 0 {
		t.Fatalf("expected zero counts, got %+v", stats)
	}
	if !stats.Revenue.IsZero() {
		t.Fatalf("expected zero revenue, got %s", stats.Revenue)
	}
}

func TestListUsers(t *testing.T) {
	client, svc := newAdminFixture(t)

	user := models.User{ID: uuid.New(), Mobile: "9876543210", Name: "Harpreet Singh", Role: enums.RoleFarmer, Status: enums.UserStatusActive}
	if err := client.DB().Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	listed, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 user, got %d", len(listed))
	}
	if listed[0].ID != user.ID || listed[0].Role != enums.RoleFarmer {
		t.Fatalf("unexpected listing: %+v", listed[0])
	}
}
