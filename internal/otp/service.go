package otp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/config"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/metrics"
)

// Outcome is the discriminated result of a verification attempt. OTP
// mismatch is an expected user-facing condition, so verification reports
// outcomes instead of returning errors.
type Outcome string

const (
	OutcomeValid    Outcome = "VALID"
	OutcomeExpired  Outcome = "EXPIRED"
	OutcomeNotFound Outcome = "NOT_FOUND"
	OutcomeMismatch Outcome = "MISMATCH"
)

// Result carries the outcome and, when valid, the mobile the code was
// issued for.
type Result struct {
	Outcome Outcome
	Mobile  string
}

// Challenge is handed back on issuance. The code is only exposed so dev
// deployments can short-circuit the SMS gateway; production responses omit it.
type Challenge struct {
	ID        string
	Code      string
	ExpiresAt time.Time
}

type entry struct {
	code      string
	mobile    string
	expiresAt time.Time
}

// WindowLimiter is the optional shared counter backing the issuance cap
// across instances. The redis client satisfies it.
type WindowLimiter interface {
	RateLimitKey(scope, id string) string
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Service issues and consumes short-lived one-time codes. Entries live in
// process memory for the process lifetime, which is acceptable for a
// single-instance deployment and is not horizontally scalable.
type Service struct {
	mu      sync.Mutex
	entries map[string]entry
	issued  map[string][]time.Time

	ttl         time.Duration
	issueLimit  int
	issueWindow time.Duration
	now         func() time.Time
	limiter     WindowLimiter
	metrics     *metrics.Marketplace
}

// Params packages the service dependencies. Now defaults to time.Now;
// Limiter and Metrics may be nil.
type Params struct {
	Config  config.OTPConfig
	Now     func() time.Time
	Limiter WindowLimiter
	Metrics *metrics.Marketplace
}

// NewService builds an OTP service with an injected clock and TTL.
func NewService(params Params) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	ttl := params.Config.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		entries:     make(map[string]entry),
		issued:      make(map[string][]time.Time),
		ttl:         ttl,
		issueLimit:  params.Config.IssueLimit,
		issueWindow: params.Config.IssueWindow,
		now:         now,
		limiter:     params.Limiter,
		metrics:     params.Metrics,
	}
}

// Issue generates a 6-digit code for the mobile and stores it under a fresh
// challenge id. Issuance is capped per mobile per window.
func (s *Service) Issue(ctx context.Context, mobile string) (Challenge, error) {
	if mobile == "" {
		return Challenge{}, pkgerrors.New(pkgerrors.CodeValidation, "mobile is required")
	}

	now := s.now()
	if err := s.checkIssueLimit(ctx, mobile, now); err != nil {
		return Challenge{}, err
	}

	code, err := generateCode()
	if err != nil {
		return Challenge{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating code")
	}
	id := challengeID(mobile, now)
	expiresAt := now.Add(s.ttl)

	s.mu.Lock()
	s.pruneLocked(now)
	s.entries[id] = entry{code: code, mobile: mobile, expiresAt: expiresAt}
	s.mu.Unlock()

	s.metrics.IncOTPIssued()
	return Challenge{ID: id, Code: code, ExpiresAt: expiresAt}, nil
}

// IssueDecoy returns a challenge shaped like a real one without storing
// anything, so callers can answer uniformly for unknown mobiles without
// revealing whether the number is registered. Verifying it yields NOT_FOUND.
func (s *Service) IssueDecoy(mobile string) (Challenge, error) {
	code, err := generateCode()
	if err != nil {
		return Challenge{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating code")
	}
	now := s.now()
	return Challenge{ID: challengeID(mobile, now), Code: code, ExpiresAt: now.Add(s.ttl)}, nil
}

// Verify consumes the challenge. VALID and detected expiry both remove the
// entry (single use); MISMATCH retains it so the user may retry until expiry.
func (s *Service) Verify(id, code string) Result {
	s.mu.Lock()
	stored, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		s.metrics.IncOTPVerified(string(OutcomeNotFound))
		return Result{Outcome: OutcomeNotFound}
	}
	if s.now().After(stored.expiresAt) {
		delete(s.entries, id)
		s.mu.Unlock()
		s.metrics.IncOTPVerified(string(OutcomeExpired))
		return Result{Outcome: OutcomeExpired}
	}
	if stored.code != code {
		s.mu.Unlock()
		s.metrics.IncOTPVerified(string(OutcomeMismatch))
		return Result{Outcome: OutcomeMismatch}
	}
	delete(s.entries, id)
	s.mu.Unlock()

	s.metrics.IncOTPVerified(string(OutcomeValid))
	return Result{Outcome: OutcomeValid, Mobile: stored.mobile}
}

func (s *Service) checkIssueLimit(ctx context.Context, mobile string, now time.Time) error {
	if s.issueLimit <= 0 || s.issueWindow <= 0 {
		return nil
	}

	if s.limiter != nil {
		key := s.limiter.RateLimitKey("otp_issue", mobile)
		count, err := s.limiter.IncrWindow(ctx, key, s.issueWindow)
		if err != nil {
			// The limiter is best-effort hardening; fall through to the
			// local window rather than blocking issuance.
			return s.checkLocalLimit(mobile, now)
		}
		if count > int64(s.issueLimit) {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many codes requested for this mobile")
		}
		return nil
	}

	return s.checkLocalLimit(mobile, now)
}

func (s *Service) checkLocalLimit(mobile string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.issueWindow)
	recent := s.issued[mobile][:0]
	for _, at := range s.issued[mobile] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	if len(recent) >= s.issueLimit {
		s.issued[mobile] = recent
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many codes requested for this mobile")
	}
	s.issued[mobile] = append(recent, now)
	return nil
}

// pruneLocked drops entries that expired without ever being verified.
func (s *Service) pruneLocked(now time.Time) {
	for id, stored := range s.entries {
		if now.After(stored.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func challengeID(mobile string, now time.Time) string {
	raw := fmt.Sprintf("%s-%s", mobile, strconv.FormatInt(now.UnixNano(), 10))
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
