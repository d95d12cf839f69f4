package signal

import (
	"github.com/frag7/intake-api/config/router"
	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/pkg/turnstile"
	"gorm.io/gorm"
)

type SignalServiceFactory interface {
	CreateService() SignalService
	CreateController() *router.RESTController
}

type DefaultSignalServiceFactory struct {
	db       *gorm.DB
	logger   *log.Logger
	verifier turnstile.Verifier
	notifier Notifier
}

func NewSignalServiceFactory(db *gorm.DB, logger *log.Logger, verifier turnstile.Verifier, notifier Notifier) SignalServiceFactory {
	return &DefaultSignalServiceFactory{
		db:       db,
		logger:   logger,
		verifier: verifier,
		notifier: notifier,
	}
}

func (f *DefaultSignalServiceFactory) CreateService() SignalService {
	repository := NewQueueRepository(f.db)
	matcher := NewPodMatcher(f.logger, repository)
	return NewSignalService(f.logger, repository, matcher, f.verifier, f.notifier)
}

func (f *DefaultSignalServiceFactory) CreateController() *router.RESTController {
	return NewSignalController(f.db, f.logger, f.verifier, f.notifier)
}
