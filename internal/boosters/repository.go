package boosters

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ukombozini/backoffice/internal/platform/db"
	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Repository defines data access for booster programs.
type Repository interface {
	ListProducts(ctx context.Context) ([]AgricultureProduct, error)
	CreateProduct(ctx context.Context, p AgricultureProduct) (AgricultureProduct, error)
	UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) error

	ListCollections(ctx context.Context, filters shared.ListFilters) ([]AgricultureCollection, int, error)
	GetCollection(ctx context.Context, id int64) (AgricultureCollection, error)
	CreateCollection(ctx context.Context, c AgricultureCollection) (AgricultureCollection, error)
	UpdateCollection(ctx context.Context, c AgricultureCollection) error

	ListSchoolFees(ctx context.Context, memberID int64) ([]SchoolFeesCollection, error)
	CreateSchoolFees(ctx context.Context, c SchoolFeesCollection) (SchoolFeesCollection, error)

	RecordPayment(ctx context.Context, p BoosterPayment) (BoosterPayment, error)
	ListPayments(ctx context.Context, memberID int64) ([]BoosterPayment, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repository) ListProducts(ctx context.Context) ([]AgricultureProduct, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, unit_of_measure, current_market_price, price_last_updated, is_active, created_at
		 FROM agriculture_products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgricultureProduct
	for rows.Next() {
		var p AgricultureProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitOfMeasure, &p.CurrentMarketPrice,
			&p.PriceLastUpdated, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) CreateProduct(ctx context.Context, p AgricultureProduct) (AgricultureProduct, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO agriculture_products (name, unit_of_measure, current_market_price, price_last_updated, is_active)
		 VALUES ($1, $2, $3, NOW(), $4)
		 RETURNING id, price_last_updated, created_at`,
		p.Name, p.UnitOfMeasure, p.CurrentMarketPrice, p.IsActive,
	).Scan(&p.ID, &p.PriceLastUpdated, &p.CreatedAt)
	if isUniqueViolation(err) {
		return AgricultureProduct{}, httpx.ErrDuplicate
	}
	return p, err
}

func (r *repository) UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE agriculture_products SET current_market_price = $1, price_last_updated = NOW() WHERE id = $2`,
		price, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

const collectionColumns = `id, member_id, product_id, quantity, unit_price, total_value, collection_date,
	COALESCE(location, ''), COALESCE(quality_grade, ''), receipt_number, payment_status, amount_paid,
	created_at, updated_at`

func scanCollection(row pgx.Row) (AgricultureCollection, error) {
	var c AgricultureCollection
	err := row.Scan(&c.ID, &c.MemberID, &c.ProductID, &c.Quantity, &c.UnitPrice, &c.TotalValue,
		&c.CollectionDate, &c.Location, &c.QualityGrade, &c.ReceiptNumber, &c.PaymentStatus,
		&c.AmountPaid, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) ListCollections(ctx context.Context, filters shared.ListFilters) ([]AgricultureCollection, int, error) {
	query := `SELECT ` + collectionColumns + ` FROM agriculture_collections WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM agriculture_collections WHERE 1=1`
	args := []interface{}{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND receipt_number ILIKE $1`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY collection_date DESC, id DESC`
	if filters.Limit > 0 {
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []AgricultureCollection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) GetCollection(ctx context.Context, id int64) (AgricultureCollection, error) {
	row := r.db.QueryRow(ctx, `SELECT `+collectionColumns+` FROM agriculture_collections WHERE id = $1`, id)
	c, err := scanCollection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return AgricultureCollection{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) CreateCollection(ctx context.Context, c AgricultureCollection) (AgricultureCollection, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO agriculture_collections (member_id, product_id, quantity, unit_price, total_value,
			collection_date, location, quality_grade, receipt_number, payment_status, amount_paid)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		c.MemberID, c.ProductID, c.Quantity, c.UnitPrice, c.TotalValue, c.CollectionDate,
		c.Location, c.QualityGrade, c.ReceiptNumber, c.PaymentStatus, c.AmountPaid,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return AgricultureCollection{}, httpx.ErrDuplicate
	}
	return c, err
}

func (r *repository) UpdateCollection(ctx context.Context, c AgricultureCollection) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE agriculture_collections SET quantity = $1, unit_price = $2, total_value = $3,
			collection_date = $4, location = NULLIF($5, ''), quality_grade = NULLIF($6, ''),
			updated_at = NOW()
		 WHERE id = $7`,
		c.Quantity, c.UnitPrice, c.TotalValue, c.CollectionDate, c.Location, c.QualityGrade, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListSchoolFees(ctx context.Context, memberID int64) ([]SchoolFeesCollection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, member_id, student_name, school_name, COALESCE(education_level, ''), COALESCE(term, ''),
			amount, receipt_number, payment_complete, collection_date, created_at
		 FROM school_fees_collections WHERE member_id = $1 ORDER BY collection_date DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SchoolFeesCollection
	for rows.Next() {
		var c SchoolFeesCollection
		if err := rows.Scan(&c.ID, &c.MemberID, &c.StudentName, &c.SchoolName, &c.EducationLevel,
			&c.Term, &c.Amount, &c.ReceiptNumber, &c.PaymentComplete, &c.CollectionDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateSchoolFees(ctx context.Context, c SchoolFeesCollection) (SchoolFeesCollection, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO school_fees_collections (member_id, student_name, school_name, education_level, term,
			amount, receipt_number, payment_complete, collection_date)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
		 RETURNING id, created_at`,
		c.MemberID, c.StudentName, c.SchoolName, c.EducationLevel, c.Term,
		c.Amount, c.ReceiptNumber, c.PaymentComplete, c.CollectionDate,
	).Scan(&c.ID, &c.CreatedAt)
	if isUniqueViolation(err) {
		return SchoolFeesCollection{}, httpx.ErrDuplicate
	}
	return c, err
}

// RecordPayment inserts the payment and, when it targets a collection, folds
// it into the collection's amount_paid in the same transaction with the
// collection row locked.
func (r *repository) RecordPayment(ctx context.Context, p BoosterPayment) (BoosterPayment, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if p.CollectionID != nil {
			var amountPaid decimal.Decimal
			err := tx.QueryRow(ctx,
				`SELECT amount_paid FROM agriculture_collections WHERE id = $1 FOR UPDATE`,
				*p.CollectionID).Scan(&amountPaid)
			if errors.Is(err, pgx.ErrNoRows) {
				return httpx.ErrNotFound
			}
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx,
				`UPDATE agriculture_collections SET amount_paid = $1, payment_status = $2, updated_at = NOW()
				 WHERE id = $3`,
				shared.Round2(amountPaid.Add(p.Amount)), p.PaymentStatus, *p.CollectionID)
			if err != nil {
				return err
			}
		}

		return tx.QueryRow(ctx,
			`INSERT INTO booster_payments (member_id, collection_id, amount, payment_status, payment_method,
				reference_code, payment_date)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
			 RETURNING id, created_at`,
			p.MemberID, p.CollectionID, p.Amount, p.PaymentStatus, p.PaymentMethod,
			p.ReferenceCode, p.PaymentDate,
		).Scan(&p.ID, &p.CreatedAt)
	})
	if isUniqueViolation(err) {
		return BoosterPayment{}, httpx.ErrDuplicate
	}
	return p, err
}

func (r *repository) ListPayments(ctx context.Context, memberID int64) ([]BoosterPayment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, member_id, collection_id, amount, payment_status, COALESCE(payment_method, ''),
			reference_code, payment_date, created_at
		 FROM booster_payments WHERE member_id = $1 ORDER BY payment_date DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BoosterPayment
	for rows.Next() {
		var p BoosterPayment
		if err := rows.Scan(&p.ID, &p.MemberID, &p.CollectionID, &p.Amount, &p.PaymentStatus,
			&p.PaymentMethod, &p.ReferenceCode, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
