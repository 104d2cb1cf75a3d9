package services

import (
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/momotrack/momo_tracker_app/internal/core/ports/services"
	"github.com/momotrack/momo_tracker_app/internal/events"
	"github.com/momotrack/momo_tracker_app/internal/platform/config"
)

// NewServiceContainer wires all services from the repository provider.
// publisher may be nil when eventing is disabled.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher events.Publisher) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo)

	return &portssvc.ServiceContainer{
		Ledger:      NewLedgerService(repos.LedgerRepo, publisher),
		User:        userSvc,
		Token:       NewTokenService(cfg, userSvc),
		GoogleOAuth: NewGoogleOAuthService(cfg, userSvc),
		APIToken:    NewAPITokenService(repos.APITokenRepo),
	}
}
