package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/vendor"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence/models"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
)

var ErrVendorNotFound = gerrors.New("vendor not found")

type PgVendorRepository struct{}

func NewVendorRepository() vendor.Repository {
	return &PgVendorRepository{}
}

func (r *PgVendorRepository) GetAll(ctx context.Context) ([]vendor.Vendor, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT id, code, name, aliases
		FROM merch_vendors
		ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vendor.Vendor
	for rows.Next() {
		var row models.Vendor
		if err := rows.Scan(&row.ID, &row.Code, &row.Name, &row.Aliases); err != nil {
			return nil, err
		}
		out = append(out, toDomainVendor(&row))
	}
	return out, rows.Err()
}

func (r *PgVendorRepository) GetByCode(ctx context.Context, code string) (vendor.Vendor, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return vendor.Vendor{}, err
	}
	var row models.Vendor
	err = tx.QueryRow(ctx, `
		SELECT id, code, name, aliases
		FROM merch_vendors
		WHERE code = $1`, code,
	).Scan(&row.ID, &row.Code, &row.Name, &row.Aliases)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vendor.Vendor{}, ErrVendorNotFound
		}
		return vendor.Vendor{}, err
	}
	return toDomainVendor(&row), nil
}

func (r *PgVendorRepository) Create(ctx context.Context, data vendor.Vendor) (vendor.Vendor, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return vendor.Vendor{}, err
	}
	var row models.Vendor
	err = tx.QueryRow(ctx, `
		INSERT INTO merch_vendors (code, name, aliases)
		VALUES ($1, $2, $3)
		RETURNING id, code, name, aliases`,
		data.Code(), data.Name(), data.Aliases(),
	).Scan(&row.ID, &row.Code, &row.Name, &row.Aliases)
	if err != nil {
		return vendor.Vendor{}, gerrors.Wrapf(err, "create vendor %s", data.Code())
	}
	return toDomainVendor(&row), nil
}

func (r *PgVendorRepository) Update(ctx context.Context, data vendor.Vendor) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE merch_vendors SET name = $2, aliases = $3
		WHERE code = $1`,
		data.Code(), data.Name(), data.Aliases(),
	)
	if err != nil {
		return gerrors.Wrapf(err, "update vendor %s", data.Code())
	}
	if tag.RowsAffected() == 0 {
		return ErrVendorNotFound
	}
	return nil
}
