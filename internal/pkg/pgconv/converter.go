package pgconv

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

var ErrInvalidNumericValue = errors.New("invalid numeric value")

func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func DecimalPtrToNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{Valid: false}
	}
	return DecimalToNumeric(*d)
}

func DecimalFromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Zero, ErrInvalidNumericValue
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

func DecimalPtrFromNumeric(n pgtype.Numeric) (*decimal.Decimal, error) {
	if !n.Valid {
		return nil, nil
	}
	d, err := DecimalFromNumeric(n)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type decimalDest struct{ d *decimal.Decimal }

func (s decimalDest) ScanNumeric(n pgtype.Numeric) error {
	v, err := DecimalFromNumeric(n)
	if err != nil {
		return err
	}
	*s.d = v
	return nil
}

// DecimalDest is a Scan target that writes a numeric column into d.
// NULL scans as zero.
func DecimalDest(d *decimal.Decimal) pgtype.NumericScanner {
	return decimalDest{d: d}
}

type decimalPtrDest struct{ d **decimal.Decimal }

func (s decimalPtrDest) ScanNumeric(n pgtype.Numeric) error {
	v, err := DecimalPtrFromNumeric(n)
	if err != nil {
		return err
	}
	*s.d = v
	return nil
}

// DecimalPtrDest is a Scan target for nullable numeric columns.
func DecimalPtrDest(d **decimal.Decimal) pgtype.NumericScanner {
	return decimalPtrDest{d: d}
}

// IsNoRows checks if the error is a "no rows" error from either sql or pgx
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeForeignKeyViolation
}
