package orders

import (
	"context"
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
	"github.com/farmdirect/farmdirect-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// TxScope is the slice of a transaction scope the placement saga needs.
type TxScope interface {
	Exec(ctx context.Context, text string, args ...any) (db.Result, error)
	Commit() error
	Rollback() error
	Release() error
}

// Store abstracts the database client so the saga can be exercised against
// scripted scopes.
type Store interface {
	Begin(ctx context.Context) (TxScope, error)
	Exec(ctx context.Context, text string, args ...any) (db.Result, error)
}

type clientStore struct {
	client *db.Client
}

// NewClientStore adapts the database client to the Store interface.
func NewClientStore(client *db.Client) Store {
	return clientStore{client: client}
}

func (s clientStore) Begin(ctx context.Context) (TxScope, error) {
	return s.client.Begin(ctx)
}

func (s clientStore) Exec(ctx context.Context, text string, args ...any) (db.Result, error) {
	return s.client.Exec(ctx, text, args...)
}

// Service runs order placement and fulfillment.
type Service struct {
	store   Store
	fees    FeePolicy
	numbers *NumberGenerator
	metrics *metrics.Marketplace
	logg    *logger.Logger
	now     func() time.Time
}

// ServiceParams packages the order service dependencies.
type ServiceParams struct {
	Store   Store
	Fees    FeePolicy
	Numbers *NumberGenerator
	Metrics *metrics.Marketplace
	Logger  *logger.Logger
	Now     func() time.Time
}

// NewService builds the order service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "store required")
	}
	if params.Fees == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fee policy required")
	}
	numbers := params.Numbers
	if numbers == nil {
		numbers = NewNumberGenerator()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   params.Store,
		fees:    params.Fees,
		numbers: numbers,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// PlaceOrder creates one order per requested line inside a single scope.
// Any line failing its availability check, or any write failing, discards
// the whole batch. An order number collision is retried a bounded number of
// times with a fresh number.
func (s *Service) PlaceOrder(ctx context.Context, retailerID uuid.UUID, role enums.Role, req PlaceOrderRequest) ([]PlacedOrder, error) {
	if role != enums.RoleRetailer {
		s.metrics.IncOrdersRejected("forbidden")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only retailers can place orders")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order batch is empty")
	}
	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var placed []PlacedOrder
	backoff := retry.WithMaxRetries(2, retry.NewConstant(25*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		batch, err := s.placeBatch(ctx, retailerID, method, req)
		if db.IsUniqueViolation(err, "order_number") {
			if s.logg != nil {
				s.logg.Warn(ctx, "order number collision, retrying with a fresh number")
			}
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		placed = batch
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "order_number") {
			s.metrics.IncOrdersRejected("number_conflict")
			s.logFailure(ctx, "order number collision exhausted retries", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate order number")
		}
		return nil, err
	}

	s.metrics.IncOrdersPlaced(len(placed))
	return placed, nil
}

func (s *Service) placeBatch(ctx context.Context, retailerID uuid.UUID, method enums.PaymentMethod, req PlaceOrderRequest) ([]PlacedOrder, error) {
	scope, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Release() }()

	fail := func(err error) ([]PlacedOrder, error) {
		_ = scope.Rollback()
		// Business rejections already carry a caller-facing code; only
		// backend failures need the operator dump.
		if pkgerrors.As(err) == nil {
			s.logFailure(ctx, "order scope failed", err)
		}
		return nil, err
	}

	now := s.now().UTC()
	placed := make([]PlacedOrder, 0, len(req.Items))

	for _, item := range req.Items {
		res, err := scope.Exec(ctx,
			`SELECT id, farmer_id, quantity, min_order_qty, price_per_unit, status
			 FROM products WHERE id = $1`,
			item.ProductID.String(),
		)
		if err != nil {
			return fail(err)
		}
		product := res.First()
		if product == nil {
			s.metrics.IncOrdersRejected("not_found")
			return fail(pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": item.ProductID}))
		}
		if enums.ProductStatus(product.String("status")) != enums.ProductStatusActive ||
			product.Float("quantity") < item.Quantity {
			s.metrics.IncOrdersRejected("unavailable")
			return fail(pkgerrors.New(pkgerrors.CodeConflict, "product unavailable").
				WithDetails(map[string]any{"product_id": item.ProductID}))
		}
		if item.Quantity < product.Float("min_order_qty") {
			return fail(pkgerrors.New(pkgerrors.CodeValidation, "below minimum order quantity").
				WithDetails(map[string]any{"product_id": item.ProductID}))
		}

		fees := s.fees.Assess(product.Decimal("price_per_unit"), item.Quantity)
		orderID := uuid.New()
		number := s.numbers.Next(now)

		_, err = scope.Exec(ctx,
			`INSERT INTO orders (id, order_number, farmer_id, retailer_id, product_id, quantity,
			                     unit_price, total_amount, platform_commission, delivery_fee,
			                     net_amount_to_farmer, status, payment_status, payment_method,
			                     delivery_address, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			orderID.String(), number, product.String("farmer_id"), retailerID.String(),
			item.ProductID.String(), item.Quantity,
			product.Decimal("price_per_unit").String(), fees.Total.String(),
			fees.Commission.String(), fees.DeliveryFee.String(), fees.NetToFarmer.String(),
			enums.OrderStatusPending.String(), enums.PaymentStatusPending.String(),
			method.String(), req.DeliveryAddress, now, now,
		)
		if err != nil {
			return fail(err)
		}

		// Guarded decrement; a concurrent writer may have consumed stock
		// between the read and this write on the networked engine.
		upd, err := scope.Exec(ctx,
			`UPDATE products SET quantity = quantity - $1, updated_at = $2
			 WHERE id = $3 AND quantity >= $4`,
			item.Quantity, now, item.ProductID.String(), item.Quantity,
		)
		if err != nil {
			return fail(err)
		}
		if upd.RowsAffected == 0 {
			s.metrics.IncOrdersRejected("unavailable")
			return fail(pkgerrors.New(pkgerrors.CodeConflict, "product unavailable").
				WithDetails(map[string]any{"product_id": item.ProductID}))
		}

		placed = append(placed, PlacedOrder{
			ID:          orderID,
			OrderNumber: number,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			TotalAmount: fees.Total,
		})
	}

	if err := scope.Commit(); err != nil {
		return nil, err
	}
	return placed, nil
}

// ListMine returns the caller's orders, newest first. Farmers see orders on
// their produce; every other role sees orders they placed.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, role enums.Role) ([]View, error) {
	column := "o.retailer_id"
	if role == enums.RoleFarmer {
		column = "o.farmer_id"
	}

	res, err := s.store.Exec(ctx,
		`SELECT o.id, o.order_number, o.product_id, o.farmer_id, o.retailer_id, o.quantity,
		        o.unit_price, o.total_amount, o.status, o.payment_status, o.created_at,
		        p.name AS product_name
		 FROM orders o
		 JOIN products p ON o.product_id = p.id
		 WHERE `+column+` = $1
		 ORDER BY o.created_at DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, err
	}
	return viewsFromRecords(res.Rows)
}

// UpdateStatus moves an order to the given fulfillment state and appends a
// tracking entry, in one scope.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (enums.OrderStatus, error) {
	status, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	scope, err := s.store.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = scope.Release() }()

	now := s.now().UTC()
	upd, err := scope.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status.String(), now, orderID.String(),
	)
	if err != nil {
		_ = scope.Rollback()
		return "", err
	}
	if upd.RowsAffected == 0 {
		_ = scope.Rollback()
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	_, err = scope.Exec(ctx,
		`INSERT INTO order_tracking (id, order_id, status, note, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), orderID.String(), status.String(), req.Note, now,
	)
	if err != nil {
		_ = scope.Rollback()
		return "", err
	}

	if err := scope.Commit(); err != nil {
		return "", err
	}
	return status, nil
}

// ListAvailableForDelivery returns orders a delivery partner can pick up.
func (s *Service) ListAvailableForDelivery(ctx context.Context) ([]View, error) {
	res, err := s.store.Exec(ctx,
		`SELECT o.id, o.order_number, o.product_id, o.farmer_id, o.retailer_id, o.quantity,
		        o.unit_price, o.total_amount, o.status, o.payment_status, o.created_at,
		        p.name AS product_name
		 FROM orders o
		 JOIN products p ON o.product_id = p.id
		 WHERE o.status IN ('READY_FOR_PICKUP', 'OUT_FOR_DELIVERY')
		 ORDER BY o.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	return viewsFromRecords(res.Rows)
}

func (s *Service) logFailure(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "dump", pkgerrors.Dump(err))
	s.logg.Error(ctx, msg, err)
}

func viewsFromRecords(rows []db.Record) ([]View, error) {
	out := make([]View, 0, len(rows))
	for _, rec := range rows {
		id, err := uuid.Parse(rec.String("id"))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing order id")
		}
		productID, err := uuid.Parse(rec.String("product_id"))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing product id")
		}
		farmerID, err := uuid.Parse(rec.String("farmer_id"))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing farmer id")
		}
		retailerID, err := uuid.Parse(rec.String("retailer_id"))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing retailer id")
		}
		out = append(out, View{
			ID:          id,
			OrderNumber: rec.String("order_number"),
			ProductID:   productID,
			ProductName: rec.String("product_name"),
			FarmerID:    farmerID,
			RetailerID:  retailerID,
			Quantity:    rec.Float("quantity"),
			UnitPrice:   rec.Decimal("unit_price"),
			TotalAmount: rec.Decimal("total_amount"),
			Status:      enums.OrderStatus(rec.String("status")),
			Payment:     enums.PaymentStatus(rec.String("payment_status")),
			PlacedAt:    rec.Time("created_at"),
		})
	}
	return out, nil
}
