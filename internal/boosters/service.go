package boosters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// CacheInvalidator bumps derived read models after a collection write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service handles booster program business logic.
type Service struct {
	repo  Repository
	cache CacheInvalidator
	now   func() time.Time
}

// NewService builds a Service instance. The cache port may be nil.
func NewService(repo Repository, cache CacheInvalidator) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// Products lists agriculture products.
func (s *Service) Products(ctx context.Context) ([]AgricultureProduct, error) {
	return s.repo.ListProducts(ctx)
}

// CreateProduct registers a produce type.
func (s *Service) CreateProduct(ctx context.Context, p AgricultureProduct) (AgricultureProduct, error) {
	if p.Name == "" {
		return AgricultureProduct{}, fmt.Errorf("%w: product name required", httpx.ErrValidation)
	}
	if p.UnitOfMeasure == "" {
		return AgricultureProduct{}, fmt.Errorf("%w: unit of measure required", httpx.ErrValidation)
	}
	if p.CurrentMarketPrice.IsNegative() {
		return AgricultureProduct{}, fmt.Errorf("%w: market price cannot be negative", httpx.ErrValidation)
	}
	p.IsActive = true
	return s.repo.CreateProduct(ctx, p)
}

// UpdateProductPrice sets a product's current market price.
func (s *Service) UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product ID", httpx.ErrValidation)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: market price cannot be negative", httpx.ErrValidation)
	}
	return s.repo.UpdateProductPrice(ctx, id, price)
}

// Collections lists agriculture collections.
func (s *Service) Collections(ctx context.Context, filters shared.ListFilters) ([]AgricultureCollection, int, error) {
	return s.repo.ListCollections(ctx, filters)
}

// Collection returns one collection by ID.
func (s *Service) Collection(ctx context.Context, id int64) (AgricultureCollection, error) {
	if id <= 0 {
		return AgricultureCollection{}, fmt.Errorf("%w: invalid collection ID", httpx.ErrValidation)
	}
	return s.repo.GetCollection(ctx, id)
}

// RecordCollection registers delivered produce. The total value is derived
// from quantity and unit price when the caller did not supply one.
func (s *Service) RecordCollection(ctx context.Context, c AgricultureCollection) (AgricultureCollection, error) {
	if c.MemberID <= 0 || c.ProductID <= 0 {
		return AgricultureCollection{}, fmt.Errorf("%w: member and product required", httpx.ErrValidation)
	}
	if !c.Quantity.IsPositive() {
		return AgricultureCollection{}, fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	}
	if c.UnitPrice.IsNegative() {
		return AgricultureCollection{}, fmt.Errorf("%w: unit price cannot be negative", httpx.ErrValidation)
	}
	valueCollection(&c)
	if c.CollectionDate.IsZero() {
		c.CollectionDate = s.now()
	}
	if c.ReceiptNumber == "" {
		c.ReceiptNumber = uuid.NewString()
	}
	c.PaymentStatus = PaymentPending
	c.AmountPaid = decimal.Zero
	created, err := s.repo.CreateCollection(ctx, c)
	if err == nil {
		s.invalidateCache(ctx)
	}
	return created, err
}

// UpdateCollection edits a collection's produce details. The stored total
// value is only recomputed when it is zero.
func (s *Service) UpdateCollection(ctx context.Context, id int64, quantity, unitPrice decimal.Decimal, location, qualityGrade string) (AgricultureCollection, error) {
	c, err := s.Collection(ctx, id)
	if err != nil {
		return AgricultureCollection{}, err
	}
	if !quantity.IsPositive() {
		return AgricultureCollection{}, fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	}

	c.Quantity = quantity
	c.UnitPrice = unitPrice
	c.Location = location
	c.QualityGrade = qualityGrade
	valueCollection(&c)
	if err := s.repo.UpdateCollection(ctx, c); err != nil {
		return AgricultureCollection{}, err
	}
	return c, nil
}

// SchoolFees lists school fees collections for a member.
func (s *Service) SchoolFees(ctx context.Context, memberID int64) ([]SchoolFeesCollection, error) {
	if memberID <= 0 {
		return nil, fmt.Errorf("%w: invalid member ID", httpx.ErrValidation)
	}
	return s.repo.ListSchoolFees(ctx, memberID)
}

// RecordSchoolFees registers a school fees contribution.
func (s *Service) RecordSchoolFees(ctx context.Context, c SchoolFeesCollection) (SchoolFeesCollection, error) {
	if c.MemberID <= 0 {
		return SchoolFeesCollection{}, fmt.Errorf("%w: member required", httpx.ErrValidation)
	}
	if c.StudentName == "" || c.SchoolName == "" {
		return SchoolFeesCollection{}, fmt.Errorf("%w: student and school names required", httpx.ErrValidation)
	}
	if !c.Amount.IsPositive() {
		return SchoolFeesCollection{}, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	if c.CollectionDate.IsZero() {
		c.CollectionDate = s.now()
	}
	if c.ReceiptNumber == "" {
		c.ReceiptNumber = uuid.NewString()
	}
	return s.repo.CreateSchoolFees(ctx, c)
}

// RecordPayment pays a member, optionally against an agriculture collection.
// The payment status on the collection is taken from the caller, not derived
// from the amounts.
func (s *Service) RecordPayment(ctx context.Context, p BoosterPayment) (BoosterPayment, error) {
	if p.MemberID <= 0 {
		return BoosterPayment{}, fmt.Errorf("%w: member required", httpx.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return BoosterPayment{}, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = PaymentPaid
	}
	if !p.PaymentStatus.Valid() {
		return BoosterPayment{}, fmt.Errorf("%w: unknown payment status %q", httpx.ErrValidation, p.PaymentStatus)
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = s.now()
	}
	if p.ReferenceCode == "" {
		p.ReferenceCode = uuid.NewString()
	}
	paid, err := s.repo.RecordPayment(ctx, p)
	if err == nil {
		s.invalidateCache(ctx)
	}
	return paid, err
}

// Payments lists booster payments for a member.
func (s *Service) Payments(ctx context.Context, memberID int64) ([]BoosterPayment, error) {
	if memberID <= 0 {
		return nil, fmt.Errorf("%w: invalid member ID", httpx.ErrValidation)
	}
	return s.repo.ListPayments(ctx, memberID)
}
