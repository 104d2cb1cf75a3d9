package sqlite

import (
	"database/sql"

	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:   newSQLiteLedgerRepository(db),
		UserRepo:     newSQLiteUserRepository(db),
		APITokenRepo: newSQLiteAPITokenRepository(db),
	}
}
