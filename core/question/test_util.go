package question

import (
	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/subject"
)

// NewServiceMock returns a Service that sends its e-mails synchronously.
func NewServiceMock(
	db core.DB,
	repo Repository,
	subjectSvc subject.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) Service {
	return NewSyncService(db, repo, subjectSvc, mailSvc, logger, conf)
}
