package orders

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
	"github.com/farmdirect/farmdirect-backend/pkg/migrate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderFixture struct {
	client     *db.Client
	svc        *Service
	farmerID   uuid.UUID
	retailerID uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "orders_test.sqlite"),
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(migrate.AllModels...); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	fees, err := NewFlatFeePolicy(config.FeesConfig{CommissionRate: "0", DeliveryFee: "0"})
	if err != nil {
		t.Fatalf("failed to build fee policy: %v", err)
	}
	svc, err := NewService(ServiceParams{Store: NewClientStore(client), Fees: fees})
	if err != nil {
		t.Fatalf("failed to build order service: %v", err)
	}

	fx := &orderFixture{client: client, svc: svc, farmerID: uuid.New(), retailerID: uuid.New()}
	seedUser(t, client, fx.farmerID, enums.RoleFarmer)
	seedUser(t, client, fx.retailerID, enums.RoleRetailer)
	return fx
}

func seedUser(t *testing.T, client *db.Client, id uuid.UUID, role enums.Role) {
	t.Helper()
	user := models.User{
		ID:     id,
		Mobile: "9" + id.String()[:9],
		Name:   string(role) + " user",
		Role:   role,
		Status: enums.UserStatusActive,
	}
	if err := client.DB().Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func (fx *orderFixture) seedProduct(t *testing.T, quantity float64, price string) uuid.UUID {
	t.Helper()
	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("bad price %q: %v", price, err)
	}
	product := models.Product{
		ID:           uuid.New(),
		FarmerID:     fx.farmerID,
		Name:         "Wheat",
		Category:     "Grains",
		Quantity:     quantity,
		Unit:         "kg",
		PricePerUnit: unitPrice,
		Images:       "[]",
		Status:       enums.ProductStatusActive,
	}
	if err := fx.client.DB().Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product.ID
}

func (fx *orderFixture) productQuantity(t *testing.T, id uuid.UUID) float64 {
	t.Helper()
	var product models.Product
	if err := fx.client.DB().First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load product: %v", err)
	}
	return product.Quantity
}

func TestPlaceOrderHappyPath(t *testing.T) {
	fx := newOrderFixture(t)
	productID := fx.seedProduct(t, 1000, "25")

	placed, err := fx.svc.PlaceOrder(context.Background(), fx.retailerID, enums.RoleRetailer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 100}},
		DeliveryAddress: "Shop 12, Grain Market, Ludhiana",
		PaymentMethod:   "COD",
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if len(placed) != 1 {
		t.Fatalf("expected 1 placed order, got %d", len(placed))
	}
	if !placed[0].TotalAmount.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected total 2500, got %s", placed[0].TotalAmount)
	}
	if qty := fx.productQuantity(t, productID); qty != 900 {
		t.Fatalf("expected quantity 900 after placement, got %v", qty)
	}

	var order models.Order
	if err := fx.client.DB().First(&order, "id = ?", placed[0].ID).Error; err != nil {
		t.Fatalf("order row missing: %v", err)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected PENDING/PENDING, got %s/%s", order.Status, order.PaymentStatus)
	}
	if order.FarmerID != fx.farmerID {
		t.Fatalf("expected denormalized farmer id %s, got %s", fx.farmerID, order.FarmerID)
	}
	if !order.NetAmountToFarmer.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected zero-fee net 2500, got %s", order.NetAmountToFarmer)
	}
}

func TestPlaceOrderRequiresRetailerRole(t *testing.T) {
	fx := newOrderFixture(t)
	productID := fx.seedProduct(t, 1000, "25")

	_, err := fx.svc.PlaceOrder(context.Background(), fx.farmerID, enums.RoleFarmer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 10}},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "COD",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	fx := newOrderFixture(t)
	productID := fx.seedProduct(t, 50, "25")

	_, err := fx.svc.PlaceOrder(context.Background(), fx.retailerID, enums.RoleRetailer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 100}},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "COD",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if qty := fx.productQuantity(t, productID); qty != 50 {
		t.Fatalf("expected quantity unchanged at 50, got %v", qty)
	}
	var count int64
	if err := fx.client.DB().Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orders, got %d", count)
	}
}

func TestUpdateStatusAppendsTracking(t *testing.T) {
	fx := newOrderFixture(t)
	productID := fx.seedProduct(t, 1000, "25")

	placed, err := fx.svc.PlaceOrder(context.Background(), fx.retailerID, enums.RoleRetailer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 10}},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "UPI",
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	status, err := fx.svc.UpdateStatus(context.Background(), placed[0].ID, UpdateStatusRequest{Status: "ACCEPTED"})
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if status != enums.OrderStatusAccepted {
		t.Fatalf("expected ACCEPTED, got %s", status)
	}

	var tracking []models.OrderTracking
	if err := fx.client.DB().Where("order_id = ?", placed[0].ID).Find(&tracking).Error; err != nil {
		t.Fatalf("tracking query failed: %v", err)
	}
	if len(tracking) != 1 || tracking[0].Status != enums.OrderStatusAccepted {
		t.Fatalf("expected one ACCEPTED tracking row, got %+v", tracking)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	fx := newOrderFixture(t)

	_, err := fx.svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusRequest{Status: "ACCEPTED"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListMineFiltersByRole(t *testing.T) {
	fx := newOrderFixture(t)
	productID := fx.seedProduct(t, 1000, "25")
	ctx := context.Background()

	if _, err := fx.svc.PlaceOrder(ctx, fx.retailerID, enums.RoleRetailer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 10}},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "COD",
	}); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	asFarmer, err := fx.svc.ListMine(ctx, fx.farmerID, enums.RoleFarmer)
	if err != nil {
		t.Fatalf("ListMine as farmer failed: %v", err)
	}
	if len(asFarmer) != 1 || asFarmer[0].ProductName != "Wheat" {
		t.Fatalf("expected the farmer to see the order, got %+v", asFarmer)
	}

	asRetailer, err := fx.svc.ListMine(ctx, fx.retailerID, enums.RoleRetailer)
	if err != nil {
		t.Fatalf("ListMine as retailer failed: %v", err)
	}
	if len(asRetailer) != 1 {
		t.Fatalf("expected the retailer to see the order, got %+v", asRetailer)
	}

	other, err := fx.svc.ListMine(ctx, uuid.New(), enums.RoleRetailer)
	if err != nil {
		t.Fatalf("ListMine for stranger failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no orders for a stranger, got %+v", other)
	}
}

func TestListAvailableForDelivery(t *testing.T) {
	fx := newOrderFixture(t)
	productID := fx.seedProduct(t, 1000, "25")
	ctx := context.Background()

	placed, err := fx.svc.PlaceOrder(ctx, fx.retailerID, enums.RoleRetailer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 10}, {ProductID: productID, Quantity: 20}},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "COD",
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	available, err := fx.svc.ListAvailableForDelivery(ctx)
	if err != nil {
		t.Fatalf("ListAvailableForDelivery failed: %v", err)
	}
	if len(available) != 0 {
		t.Fatalf("expected no pickable orders while PENDING, got %+v", available)
	}

	if _, err := fx.svc.UpdateStatus(ctx, placed[0].ID, UpdateStatusRequest{Status: "READY_FOR_PICKUP"}); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	available, err = fx.svc.ListAvailableForDelivery(ctx)
	if err != nil {
		t.Fatalf("ListAvailableForDelivery failed: %v", err)
	}
	if len(available) != 1 || available[0].ID != placed[0].ID {
		t.Fatalf("expected the ready order, got %+v", available)
	}
}

// Scripted scopes cover batch atomicity; the embedded engine's scopes are
// documented pass-throughs and cannot demonstrate a rollback.

type scriptedScope struct {
	products map[string]db.Record
	insertErr error

	execLog   []string
	commits   int
	rollbacks int
	releases  int
}

func (s *scriptedScope) Exec(_ context.Context, text string, args ...any) (db.Result, error) {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "SELECT"):
		s.execLog = append(s.execLog, "select")
		rec, ok := s.products[args[0].(string)]
		if !ok {
			return db.Result{}, nil
		}
		return db.Result{Rows: []db.Record{rec}}, nil
	case strings.HasPrefix(trimmed, "INSERT INTO orders"):
		s.execLog = append(s.execLog, "insert")
		if s.insertErr != nil {
			err := s.insertErr
			s.insertErr = nil
			return db.Result{}, err
		}
		return db.Result{RowsAffected: 1}, nil
	case strings.HasPrefix(trimmed, "UPDATE products"):
		s.execLog = append(s.execLog, "update")
		return db.Result{RowsAffected: 1}, nil
	default:
		s.execLog = append(s.execLog, "other")
		return db.Result{RowsAffected: 1}, nil
	}
}

func (s *scriptedScope) Commit() error   { s.commits++; return nil }
func (s *scriptedScope) Rollback() error { s.rollbacks++; return nil }
func (s *scriptedScope) Release() error  { s.releases++; return nil }

type scriptedStore struct {
	products  map[string]db.Record
	insertErr error
	scopes    []*scriptedScope
}

func (s *scriptedStore) Begin(context.Context) (TxScope, error) {
	scope := &scriptedScope{products: s.products, insertErr: s.insertErr}
	s.insertErr = nil
	s.scopes = append(s.scopes, scope)
	return scope, nil
}

func (s *scriptedStore) Exec(context.Context, string, ...any) (db.Result, error) {
	return db.Result{}, nil
}

func productRecord(id uuid.UUID, farmerID uuid.UUID, quantity float64, price string) db.Record {
	return db.Record{
		"id":             id.String(),
		"farmer_id":      farmerID.String(),
		"quantity":       quantity,
		"min_order_qty":  float64(0),
		"price_per_unit": price,
		"status":         "ACTIVE",
	}
}

func newScriptedService(t *testing.T, store Store) *Service {
	t.Helper()
	fees, err := NewFlatFeePolicy(config.FeesConfig{CommissionRate: "0", DeliveryFee: "0"})
	if err != nil {
		t.Fatalf("failed to build fee policy: %v", err)
	}
	svc, err := NewService(ServiceParams{Store: store, Fees: fees})
	if err != nil {
		t.Fatalf("failed to build order service: %v", err)
	}
	return svc
}

func TestPlaceOrderRollsBackWholeBatch(t *testing.T) {
	goodID := uuid.New()
	emptyID := uuid.New()
	farmerID := uuid.New()
	store := &scriptedStore{products: map[string]db.Record{
		goodID.String():  productRecord(goodID, farmerID, 100, "25"),
		emptyID.String(): productRecord(emptyID, farmerID, 0, "25"),
	}}
	svc := newScriptedService(t, store)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), enums.RoleRetailer, PlaceOrderRequest{
		Items: []OrderItem{
			{ProductID: goodID, Quantity: 10},
			{ProductID: emptyID, Quantity: 5},
		},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "COD",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if len(store.scopes) != 1 {
		t.Fatalf("expected exactly one scope, got %d", len(store.scopes))
	}
	scope := store.scopes[0]
	if scope.commits != 0 {
		t.Fatalf("expected no commit, got %d", scope.commits)
	}
	if scope.rollbacks != 1 {
		t.Fatalf("expected exactly one rollback, got %d", scope.rollbacks)
	}
	if scope.releases != 1 {
		t.Fatalf("expected exactly one release, got %d", scope.releases)
	}

	// The first line was written, the second failed its availability check,
	// and nothing ran after the failure.
	want := []string{"select", "insert", "update", "select"}
	if strings.Join(scope.execLog, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected exec sequence: %v", scope.execLog)
	}
}

func TestPlaceOrderRetriesNumberCollision(t *testing.T) {
	productID := uuid.New()
	farmerID := uuid.New()
	store := &scriptedStore{
		products: map[string]db.Record{
			productID.String(): productRecord(productID, farmerID, 100, "25"),
		},
		insertErr: errors.New("UNIQUE constraint failed: orders.order_number"),
	}
	svc := newScriptedService(t, store)

	placed, err := svc.PlaceOrder(context.Background(), uuid.New(), enums.RoleRetailer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 10}},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "COD",
	})
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(placed) != 1 {
		t.Fatalf("expected 1 placed order, got %d", len(placed))
	}

	if len(store.scopes) != 2 {
		t.Fatalf("expected two scopes (failed attempt + retry), got %d", len(store.scopes))
	}
	first, second := store.scopes[0], store.scopes[1]
	if first.commits != 0 || first.rollbacks != 1 || first.releases != 1 {
		t.Fatalf("first attempt should roll back and release once: %+v", first)
	}
	if second.commits != 1 || second.rollbacks != 0 || second.releases != 1 {
		t.Fatalf("retry should commit and release once: %+v", second)
	}
}

func TestPlaceOrderLogsBackendFailure(t *testing.T) {
	productID := uuid.New()
	farmerID := uuid.New()
	store := &scriptedStore{
		products: map[string]db.Record{
			productID.String(): productRecord(productID, farmerID, 100, "25"),
		},
		insertErr: errors.New("connection reset"),
	}

	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	fees, err := NewFlatFeePolicy(config.FeesConfig{CommissionRate: "0", DeliveryFee: "0"})
	if err != nil {
		t.Fatalf("failed to build fee policy: %v", err)
	}
	svc, err := NewService(ServiceParams{Store: store, Fees: fees, Logger: logg})
	if err != nil {
		t.Fatalf("failed to build order service: %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), uuid.New(), enums.RoleRetailer, PlaceOrderRequest{
		Items:           []OrderItem{{ProductID: productID, Quantity: 10}},
		DeliveryAddress: "somewhere",
		PaymentMethod:   "COD",
	})
	if err == nil {
		t.Fatalf("expected backend failure to surface")
	}
	if !bytes.Contains(buf.Bytes(), []byte("order scope failed")) {
		t.Fatalf("expected operator log entry, got %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("connection reset")) {
		t.Fatalf("expected the cause in the dump, got %s", buf.String())
	}
}
