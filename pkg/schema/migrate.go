package schema

import (
	"context"
	"database/sql"
	"io/fs"

	gerrors "github.com/go-faster/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// Migrate applies all pending goose migrations from the given fs to the
// database. The engine never generates schema at query time: every derived
// column ad-hoc SQL consumers read (match_status, is_locked, classification
// fields) is declared here and persisted by the services.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS, log *logrus.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return gerrors.Wrap(err, "failed to set goose dialect")
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return gerrors.Wrap(err, "failed to apply migrations")
	}
	return nil
}
