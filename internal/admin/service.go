package admin

import (
	"context"
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stats is the operator dashboard summary.
type Stats struct {
	Users          int64           `json:"users"`
	Orders         int64           `json:"orders"`
	ActiveProducts int64           `json:"products"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// UserSummary is one row of the operator's user listing.
type UserSummary struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Role     enums.Role `json:"role"`
	Mobile   string     `json:"mobile"`
	JoinedAt time.Time  `json:"joined_at"`
}

// Service serves the operator dashboard.
type Service struct {
	db *db.Client
}

// NewService builds the admin service.
func NewService(client *db.Client) (*Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &Service{db: client}, nil
}

// GetStats aggregates platform counts. Revenue only counts settled orders.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Revenue: decimal.Zero}

	res, err := s.db.Exec(ctx, "SELECT COUNT(*) AS count FROM users")
	if err != nil {
		return nil, err
	}
	stats.Users = res.First().Int("count")

	res, err = s.db.Exec(ctx, "SELECT COUNT(*) AS count FROM orders")
	if err != nil {
		return nil, err
	}
	stats.Orders = res.First().Int("count")

	res, err = s.db.Exec(ctx, "SELECT COUNT(*) AS count FROM products WHERE status = 'ACTIVE'")
	if err != nil {
		return nil, err
	}
	stats.ActiveProducts = res.First().Int("count")

	res, err = s.db.Exec(ctx, "SELECT SUM(total_amount) AS total FROM orders WHERE payment_status = 'PAID'")
	if err != nil {
		return nil, err
	}
	if rec := res.First(); rec != nil && rec["total"] != nil {
		stats.Revenue = rec.Decimal("total")
	}

	return stats, nil
}

// ListUsers returns every account, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	res, err := s.db.Exec(ctx,
		"SELECT id, name, role, mobile, created_at FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(res.Rows))
	for _, rec := range res.Rows {
		id, err := uuid.Parse(rec.String("id"))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing user id")
		}
		out = append(out, UserSummary{
			ID:       id,
			Name:     rec.String("name"),
			Role:     enums.Role(rec.String("role")),
			Mobile:   rec.String("mobile"),
			JoinedAt: rec.Time("created_at"),
		})
	}
	return out, nil
}
