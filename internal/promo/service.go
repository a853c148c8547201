// Package promo is the promo code ledger: lookup, validation, atomic
// redemption and staff administration of discount codes.
//
// Redemption policy is permissive. Checkout treats an unknown, expired,
// exhausted or concurrently consumed code as "no discount" and carries on;
// none of these cases is reported to the customer as an error.
package promo

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"restaurant-be/internal/db"
	"restaurant-be/internal/logger"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	codeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	minCodeLength    = 6
	maxCodeLength    = 9
	maxCreateRetries = 5
	qrSize           = 256
)

// Ledger is the part of the service used inside the checkout transaction.
type Ledger interface {
	FindByCode(ctx context.Context, q db.Querier, code string) (*PromoCode, error)
	IsValid(ctx context.Context, q db.Querier, codeID int64) (bool, error)
	Consume(ctx context.Context, q db.Querier, codeID int64) (*PromoCode, bool, error)
}

type Service interface {
	Ledger
	GenerateCode(length int) string
	CreateCode(ctx context.Context, in NewCodeInput) (*PromoCode, error)
	DeleteCode(ctx context.Context, id int64) error
	ListCodes(ctx context.Context) ([]PromoCode, error)
	QRCode(ctx context.Context, id int64) ([]byte, error)
}

type service struct {
	repo Repository
	now  func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService builds the ledger. rng drives code generation; now defaults
// to time.Now when nil.
func NewService(repo Repository, rng *rand.Rand, now func() time.Time) Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, rng: rng, now: now}
}

// FindByCode returns nil, nil for blank or unknown codes.
func (s *service) FindByCode(ctx context.Context, q db.Querier, code string) (*PromoCode, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	return s.repo.FindByCode(ctx, q, code)
}

func (s *service) IsValid(ctx context.Context, q db.Querier, codeID int64) (bool, error) {
	p, err := s.repo.GetByID(ctx, q, codeID)
	if err != nil {
		return false, err
	}
	return p.ValidAt(s.now()), nil
}

// Consume redeems one use. applied is false when the code could not be
// redeemed; that is never an error.
func (s *service) Consume(ctx context.Context, q db.Querier, codeID int64) (*PromoCode, bool, error) {
	p, err := s.repo.Consume(ctx, q, codeID, s.now())
	if err != nil {
		return nil, false, err
	}
	return p, p != nil, nil
}

func (s *service) GenerateCode(length int) string {
	if length < 1 {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := make([]byte, length)
	for i := range b {
		b[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (s *service) randomLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return minCodeLength + s.rng.Intn(maxCodeLength-minCodeLength+1)
}

func (s *service) CreateCode(ctx context.Context, in NewCodeInput) (*PromoCode, error) {
	log := logger.ForMethod(ctx, "service", "CreatePromoCode")

	if in.MaxUsage < 1 ||
		in.DiscountPercent < 0 || in.DiscountPercent > 100 ||
		in.ExpirationDate.Before(s.now()) {
		return nil, ErrInvalidPromoInput
	}

	for attempt := 1; attempt <= maxCreateRetries; attempt++ {
		p := &PromoCode{
			Code:            s.GenerateCode(s.randomLength()),
			ExpirationDate:  in.ExpirationDate.UTC(),
			MaxUsageCount:   in.MaxUsage,
			DiscountPercent: in.DiscountPercent,
		}

		err := s.repo.Create(ctx, p)
		if err == nil {
			log.Info("promo code created",
				zap.Int64("promo_id", p.ID),
				zap.Int("max_usage", p.MaxUsageCount),
				zap.Int("discount_percent", p.DiscountPercent),
			)
			return p, nil
		}
		if !db.IsUniqueViolation(err) {
			log.Error("failed to create promo code", zap.Error(err))
			return nil, err
		}
		log.Warn("promo code collision", zap.Int("attempt", attempt))
	}

	return nil, ErrCodeSpaceExhausted
}

func (s *service) DeleteCode(ctx context.Context, id int64) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPromoNotFound
	}
	return nil
}

func (s *service) ListCodes(ctx context.Context) ([]PromoCode, error) {
	return s.repo.ListActive(ctx)
}

// QRCode renders the code string as a PNG for printed vouchers.
func (s *service) QRCode(ctx context.Context, id int64) ([]byte, error) {
	p, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPromoNotFound
	}
	return qrcode.Encode(p.Code, qrcode.Medium, qrSize)
}
