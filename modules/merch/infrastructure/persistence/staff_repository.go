package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/domain/aggregates/staff"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence/models"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
)

var ErrStaffNotFound = gerrors.New("staff member not found")

type PgStaffRepository struct{}

func NewStaffRepository() staff.Repository {
	return &PgStaffRepository{}
}

func (r *PgStaffRepository) GetAll(ctx context.Context) ([]staff.Staff, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT id, name, title, role
		FROM merch_staff
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []staff.Staff
	for rows.Next() {
		var row models.Staff
		if err := rows.Scan(&row.ID, &row.Name, &row.Title, &row.Role); err != nil {
			return nil, err
		}
		out = append(out, toDomainStaff(&row))
	}
	return out, rows.Err()
}

func (r *PgStaffRepository) GetByName(ctx context.Context, name string) (staff.Staff, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return staff.Staff{}, err
	}
	var row models.Staff
	err = tx.QueryRow(ctx, `
		SELECT id, name, title, role
		FROM merch_staff
		WHERE name = $1`, name,
	).Scan(&row.ID, &row.Name, &row.Title, &row.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, ErrStaffNotFound
		}
		return staff.Staff{}, err
	}
	return toDomainStaff(&row), nil
}

func (r *PgStaffRepository) Create(ctx context.Context, data staff.Staff) (staff.Staff, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return staff.Staff{}, err
	}
	var row models.Staff
	err = tx.QueryRow(ctx, `
		INSERT INTO merch_staff (name, title, role)
		VALUES ($1, $2, $3)
		RETURNING id, name, title, role`,
		data.Name(), data.Title(), string(data.Role()),
	).Scan(&row.ID, &row.Name, &row.Title, &row.Role)
	if err != nil {
		return staff.Staff{}, gerrors.Wrapf(err, "create staff %s", data.Name())
	}
	return toDomainStaff(&row), nil
}

func (r *PgStaffRepository) Update(ctx context.Context, data staff.Staff) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE merch_staff SET title = $2, role = $3
		WHERE name = $1`,
		data.Name(), data.Title(), string(data.Role()),
	)
	if err != nil {
		return gerrors.Wrapf(err, "update staff %s", data.Name())
	}
	if tag.RowsAffected() == 0 {
		return ErrStaffNotFound
	}
	return nil
}
