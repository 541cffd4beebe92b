package boosters

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

type memoryBoosterRepo struct {
	products    map[int64]*AgricultureProduct
	collections map[int64]*AgricultureCollection
	schoolFees  []SchoolFeesCollection
	payments    []BoosterPayment
	nextID      int64
}

func newMemoryBoosterRepo() *memoryBoosterRepo {
	return &memoryBoosterRepo{
		products:    make(map[int64]*AgricultureProduct),
		collections: make(map[int64]*AgricultureCollection),
	}
}

func (r *memoryBoosterRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryBoosterRepo) ListProducts(ctx context.Context) ([]AgricultureProduct, error) {
	var out []AgricultureProduct
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryBoosterRepo) CreateProduct(ctx context.Context, p AgricultureProduct) (AgricultureProduct, error) {
	p.ID = r.id()
	r.products[p.ID] = &p
	return p, nil
}

func (r *memoryBoosterRepo) UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.CurrentMarketPrice = price
	return nil
}

func (r *memoryBoosterRepo) ListCollections(ctx context.Context, filters shared.ListFilters) ([]AgricultureCollection, int, error) {
	var out []AgricultureCollection
	for _, c := range r.collections {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memoryBoosterRepo) GetCollection(ctx context.Context, id int64) (AgricultureCollection, error) {
	c, ok := r.collections[id]
	if !ok {
		return AgricultureCollection{}, httpx.ErrNotFound
	}
	return *c, nil
}

func (r *memoryBoosterRepo) CreateCollection(ctx context.Context, c AgricultureCollection) (AgricultureCollection, error) {
	c.ID = r.id()
	r.collections[c.ID] = &c
	return c, nil
}

func (r *memoryBoosterRepo) UpdateCollection(ctx context.Context, c AgricultureCollection) error {
	if _, ok := r.collections[c.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.collections[c.ID] = &c
	return nil
}

func (r *memoryBoosterRepo) ListSchoolFees(ctx context.Context, memberID int64) ([]SchoolFeesCollection, error) {
	var out []SchoolFeesCollection
	for _, c := range r.schoolFees {
		if c.MemberID == memberID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryBoosterRepo) CreateSchoolFees(ctx context.Context, c SchoolFeesCollection) (SchoolFeesCollection, error) {
	c.ID = r.id()
	r.schoolFees = append(r.schoolFees, c)
	return c, nil
}

func (r *memoryBoosterRepo) RecordPayment(ctx context.Context, p BoosterPayment) (BoosterPayment, error) {
	if p.CollectionID != nil {
		c, ok := r.collections[*p.CollectionID]
		if !ok {
			return BoosterPayment{}, httpx.ErrNotFound
		}
		c.AmountPaid = shared.Round2(c.AmountPaid.Add(p.Amount))
		c.PaymentStatus = p.PaymentStatus
	}
	p.ID = r.id()
	r.payments = append(r.payments, p)
	return p, nil
}

func (r *memoryBoosterRepo) ListPayments(ctx context.Context, memberID int64) ([]BoosterPayment, error) {
	var out []BoosterPayment
	for _, p := range r.payments {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestRecordCollectionComputesTotalValue(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryBoosterRepo(), nil)

	c, err := svc.RecordCollection(ctx, AgricultureCollection{
		MemberID:  1,
		ProductID: 1,
		Quantity:  d("10"),
		UnitPrice: d("50"),
	})
	require.NoError(t, err)
	require.True(t, c.TotalValue.Equal(d("500")), "total_value = %s", c.TotalValue)
	require.Equal(t, PaymentPending, c.PaymentStatus)
	require.NotEmpty(t, c.ReceiptNumber)
}

func TestRecordCollectionKeepsSuppliedTotalValue(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryBoosterRepo(), nil)

	c, err := svc.RecordCollection(ctx, AgricultureCollection{
		MemberID:   1,
		ProductID:  1,
		Quantity:   d("10"),
		UnitPrice:  d("50"),
		TotalValue: d("450"),
	})
	require.NoError(t, err)
	require.True(t, c.TotalValue.Equal(d("450")), "caller-supplied total_value wins")
}

func TestUpdateCollectionDoesNotRecomputeTotalValue(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryBoosterRepo(), nil)

	c, err := svc.RecordCollection(ctx, AgricultureCollection{
		MemberID:  1,
		ProductID: 1,
		Quantity:  d("10"),
		UnitPrice: d("50"),
	})
	require.NoError(t, err)
	require.True(t, c.TotalValue.Equal(d("500")))

	// Doubling the quantity leaves the stored total value at 500: it is only
	// derived when zero.
	updated, err := svc.UpdateCollection(ctx, c.ID, d("20"), d("50"), "", "")
	require.NoError(t, err)
	require.True(t, updated.Quantity.Equal(d("20")))
	require.True(t, updated.TotalValue.Equal(d("500")), "total_value = %s", updated.TotalValue)
}

func TestRecordPaymentIncrementsCollection(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBoosterRepo()
	svc := NewService(repo, nil)

	c, err := svc.RecordCollection(ctx, AgricultureCollection{
		MemberID:  1,
		ProductID: 1,
		Quantity:  d("10"),
		UnitPrice: d("50"),
	})
	require.NoError(t, err)

	p, err := svc.RecordPayment(ctx, BoosterPayment{
		MemberID:      1,
		CollectionID:  &c.ID,
		Amount:        d("200"),
		PaymentStatus: PaymentPartial,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ReferenceCode)

	stored := repo.collections[c.ID]
	require.True(t, stored.AmountPaid.Equal(d("200")))
	require.Equal(t, PaymentPartial, stored.PaymentStatus)

	// A second payment accumulates; the status is whatever the caller said,
	// not derived from the amounts.
	_, err = svc.RecordPayment(ctx, BoosterPayment{
		MemberID:      1,
		CollectionID:  &c.ID,
		Amount:        d("100"),
		PaymentStatus: PaymentPaid,
	})
	require.NoError(t, err)
	require.True(t, stored.AmountPaid.Equal(d("300")))
	require.Equal(t, PaymentPaid, stored.PaymentStatus)
}

func TestRecordPaymentRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryBoosterRepo(), nil)
	_, err := svc.RecordPayment(ctx, BoosterPayment{MemberID: 1, Amount: d("100"), PaymentStatus: PaymentStatus("CLEARED")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRecordSchoolFees(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryBoosterRepo(), nil)

	c, err := svc.RecordSchoolFees(ctx, SchoolFeesCollection{
		MemberID:    1,
		StudentName: "Achieng Otieno",
		SchoolName:  "Kisumu Girls",
		Term:        "Term 2",
		Amount:      d("12000"),
	})
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	require.NotEmpty(t, c.ReceiptNumber)

	_, err = svc.RecordSchoolFees(ctx, SchoolFeesCollection{MemberID: 1, StudentName: "X", SchoolName: "Y", Amount: decimal.Zero})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
