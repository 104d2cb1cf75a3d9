package pgsql

import (
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:   newPgxLedgerRepository(dbPool),
		UserRepo:     newPgxUserRepository(dbPool),
		APITokenRepo: newPgxAPITokenRepository(dbPool),
	}
}
