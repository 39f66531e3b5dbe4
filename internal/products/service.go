package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/farmdirect/farmdirect-backend/internal/storage"
	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages farmer listings and the public catalogue.
type Service struct {
	db    *db.Client
	store storage.Store
}

// ServiceParams packages the product service dependencies. Store may be nil
// when media uploads are disabled.
type ServiceParams struct {
	DB    *db.Client
	Store storage.Store
}

// NewService builds the product service.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &Service{db: params.DB, store: params.Store}, nil
}

// Create inserts a new ACTIVE listing for the farmer. Uploaded images are
// stored first; their URLs travel in the row as a JSON list.
func (s *Service) Create(ctx context.Context, farmerID uuid.UUID, role enums.Role, req CreateRequest, uploads []storage.Upload) (*View, error) {
	if role != enums.RoleFarmer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only farmers can list products")
	}

	price, err := decimal.NewFromString(req.PricePerUnit)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price_per_unit")
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_unit cannot be negative")
	}

	imageURLs := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		if s.store == nil {
			break
		}
		url, err := s.store.Store(ctx, upload)
		if err != nil {
			return nil, err
		}
		imageURLs = append(imageURLs, url)
	}
	imagesJSON, err := json.Marshal(imageURLs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding images")
	}

	productID := uuid.New()
	res, err := s.db.Exec(ctx,
		`INSERT INTO products (id, farmer_id, name, category, quantity, unit, price_per_unit,
		                       min_order_qty, harvest_date, quality_grade, is_organic, images,
		                       description, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING *`,
		productID.String(), farmerID.String(), req.Name, req.Category, req.Quantity, req.Unit,
		price.String(), req.MinOrderQty, req.HarvestDate, req.QualityGrade, req.IsOrganic,
		string(imagesJSON), req.Description, enums.ProductStatusActive.String(),
	)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && res.First() == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product insert reported no effect")
	}

	// The embedded engine strips RETURNING and hands back no rows, so the
	// view is rebuilt from the inputs rather than the returned row.
	view := View{
		ID:           productID,
		FarmerID:     farmerID,
		Name:         req.Name,
		Category:     req.Category,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		PricePerUnit: price,
		MinOrderQty:  req.MinOrderQty,
		IsOrganic:    req.IsOrganic,
		Images:       imageURLs,
		Description:  req.Description,
		Status:       enums.ProductStatusActive,
	}
	return &view, nil
}

// ListMine returns the farmer's own listings, newest first.
func (s *Service) ListMine(ctx context.Context, farmerID uuid.UUID) ([]View, error) {
	var rows []models.Product
	err := s.db.DB().WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	out := make([]View, 0, len(rows))
	for i := range rows {
		out = append(out, viewOf(&rows[i], decodeImages(rows[i].Images)))
	}
	return out, nil
}

// Get loads a single listing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	var product models.Product
	err := s.db.DB().WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	view := viewOf(&product, decodeImages(product.Images))
	return &view, nil
}

// Search filters the public catalogue. The statement is assembled with
// positional canonical placeholders so it runs identically on both engines.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]SearchHit, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT p.id, p.farmer_id, p.name, p.category, p.quantity, p.unit,
	                       p.price_per_unit, p.min_order_qty, p.images, p.status,
	                       u.name AS farmer_name, fp.district, fp.state
	                FROM products p
	                JOIN users u ON p.farmer_id = u.id
	                JOIN farmer_profiles fp ON u.id = fp.user_id
	                WHERE p.status = 'ACTIVE'`)

	var args []any
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		sb.WriteString(" AND p.name LIKE " + next("%"+filter.Query+"%"))
	}
	if filter.Category != "" {
		sb.WriteString(" AND p.category = " + next(filter.Category))
	}
	if filter.MinPrice != nil {
		sb.WriteString(" AND p.price_per_unit >= " + next(filter.MinPrice.String()))
	}
	if filter.MaxPrice != nil {
		sb.WriteString(" AND p.price_per_unit <= " + next(filter.MaxPrice.String()))
	}
	sb.WriteString(" ORDER BY p.created_at DESC")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + next(filter.Limit))
	}

	res, err := s.db.Exec(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(res.Rows))
	for _, rec := range res.Rows {
		id, err := uuid.Parse(rec.String("id"))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing product id")
		}
		farmerID, err := uuid.Parse(rec.String("farmer_id"))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing farmer id")
		}
		hits = append(hits, SearchHit{
			View: View{
				ID:           id,
				FarmerID:     farmerID,
				Name:         rec.String("name"),
				Category:     rec.String("category"),
				Quantity:     rec.Float("quantity"),
				Unit:         rec.String("unit"),
				PricePerUnit: rec.Decimal("price_per_unit"),
				MinOrderQty:  rec.Float("min_order_qty"),
				Images:       decodeImages(rec.String("images")),
				Status:       enums.ProductStatus(rec.String("status")),
			},
			FarmerName: rec.String("farmer_name"),
			District:   rec.String("district"),
			State:      rec.String("state"),
		})
	}
	return hits, nil
}

func decodeImages(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil
	}
	return urls
}
