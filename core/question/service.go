package question

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/subject"
)

var (
	// errors
	ErrNotFound = errors.New("question not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateQuestions(ctx context.Context, qs []Question, exec ...core.DBExecutor) ([]Question, error)
		// QueryQuestions applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Question.Prompt.
		QueryQuestions(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Question, error)
		GetQuestionByID(ctx context.Context, id string, exec ...core.DBExecutor) (Question, error)
		// ListPrompts returns the prompts of every question of a subject.
		ListPrompts(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]string, error)
		DeleteQuestionsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Analyze(req AnalyzeRequest) AnalyzeResult
		Import(ctx context.Context, req ImportRequest, op core.Operator) (ImportResult, error)
		Create(ctx context.Context, nq NewQuestion) (Question, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Question, error)
		GetByID(ctx context.Context, id string) (Question, error)
		Delete(ctx context.Context, ids ...string) (int, error)
	}

	service struct {
		db          core.DB
		repo        Repository
		subjectSvc  subject.Service
		mailSvc     core.EmailService
		logger      core.Logger
		conf        *core.Config
		sendMessage func(msg *core.EmailMessage)
	}

	importReport struct {
		OperatorName   string
		SubjectName    string
		Imported       int
		Skipped        int
		SkippedPrompts []string
	}
)

var _ Service = (*service)(nil)

func NewService(
	db core.DB,
	repo Repository,
	subjectSvc subject.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) Service {
	svc := &service{
		db:         db,
		repo:       repo,
		subjectSvc: subjectSvc,
		mailSvc:    mailSvc,
		logger:     logger,
		conf:       conf,
	}
	svc.sendMessage = func(msg *core.EmailMessage) { go svc.mailSvc.SendMessages(msg) }
	return svc
}

// NewSyncService returns a Service whose import reports are sent before Import returns,
// for short-lived processes such as the admin CLI.
func NewSyncService(
	db core.DB,
	repo Repository,
	subjectSvc subject.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) Service {
	svc := NewService(db, repo, subjectSvc, mailSvc, logger, conf).(*service)
	svc.sendMessage = func(msg *core.EmailMessage) { svc.mailSvc.SendMessages(msg) }
	return svc
}

// Analyze runs the extractor on req.HTMLContent. req must have been validated.
func (svc *service) Analyze(req AnalyzeRequest) AnalyzeResult {
	questions := Extract(req.HTMLContent)
	svc.logger.Info(fmt.Sprintf("analyzed %d bytes for subject %q: %d question(s) recognized",
		len(req.HTMLContent), req.SubjectID, len(questions)))
	return AnalyzeResult{Questions: questions, Count: len(questions)}
}

// Import stores the reviewed questions of req in one transaction, skipping near-duplicates
// of the subject's existing prompts and of earlier items of the batch.
func (svc *service) Import(ctx context.Context, req ImportRequest, op core.Operator) (ImportResult, error) {
	subj, err := svc.getSubject(ctx, req.SubjectID)
	if err != nil {
		return ImportResult{}, err
	}

	prompts, err := svc.repo.ListPrompts(ctx, subj.ID)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "listing existing prompts")
	}
	dd := newDeduper(svc.conf.Importer.DuplicateRatio, prompts)

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	now := NowFunc().UTC()

	res := ImportResult{Questions: []Question{}, SkippedPrompts: []string{}}
	toCreate := make([]Question, 0, len(req.Questions))
	for _, ex := range req.Questions {
		if dd.isDuplicate(ex.Prompt) {
			res.SkippedPrompts = append(res.SkippedPrompts, ex.Prompt)
			continue
		}
		dd.add(ex.Prompt)
		toCreate = append(toCreate, Question{
			ID:           uuid.NewString(),
			SubjectID:    subj.ID,
			Prompt:       ex.Prompt,
			Choices:      ex.Choices,
			CorrectLabel: ex.CorrectLabel,
			Difficulty:   difficulty,
			Source:       SourceImport,
			ImportedBy:   op.ID,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	res.Skipped = len(res.SkippedPrompts)

	if len(toCreate) > 0 {
		created, err := svc.createInTx(ctx, toCreate)
		if err != nil {
			return ImportResult{}, err
		}
		res.Questions = created
	}
	res.Count = len(res.Questions)

	svc.logger.Info(fmt.Sprintf("imported %d question(s) into subject %q, %d skipped as duplicates",
		res.Count, subj.Name, res.Skipped), op)

	if op.Email != "" {
		svc.sendMessage(&core.EmailMessage{
			To:           []mail.Address{{Name: op.Name, Address: op.Email}},
			Subject:      fmt.Sprintf("Import report: %s", subj.Name),
			TemplateName: "import_report",
			TemplateData: importReport{
				OperatorName:   op.Name,
				SubjectName:    subj.Name,
				Imported:       res.Count,
				Skipped:        res.Skipped,
				SkippedPrompts: res.SkippedPrompts,
			},
		})
	}
	return res, nil
}

func (svc *service) createInTx(ctx context.Context, qs []Question) (created []Question, err error) {
	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "starting transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				svc.logger.Error("rolling back import", rbErr)
			}
		}
	}()

	if created, err = svc.repo.CreateQuestions(ctx, qs, tx); err != nil {
		return nil, errors.Wrap(err, "creating questions")
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return created, nil
}

func (svc *service) Create(ctx context.Context, nq NewQuestion) (Question, error) {
	subj, err := svc.getSubject(ctx, nq.SubjectID)
	if err != nil {
		return Question{}, err
	}

	difficulty := nq.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	now := NowFunc().UTC()
	q := Question{
		ID:           uuid.NewString(),
		SubjectID:    subj.ID,
		Prompt:       nq.Prompt,
		Choices:      nq.Choices,
		CorrectLabel: nq.CorrectLabel,
		Difficulty:   difficulty,
		Source:       SourceManual,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := svc.repo.CreateQuestions(ctx, []Question{q})
	if err != nil {
		return Question{}, errors.Wrap(err, "creating question")
	}
	return created[0], nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Question, error) {
	return svc.repo.QueryQuestions(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Question, error) {
	return svc.repo.GetQuestionByID(ctx, core.CleanString(id))
}

// Delete removes the questions with the given ids and returns how many were found.
func (svc *service) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return svc.repo.DeleteQuestionsByID(ctx, ids)
}

// getSubject reports an unknown subject as a validation error on subject_id.
func (svc *service) getSubject(ctx context.Context, id string) (subject.Subject, error) {
	subj, err := svc.subjectSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return subject.Subject{}, core.NewValidationError(err, core.FieldError{Field: "subject_id", Error: err.Error()})
		}
		return subject.Subject{}, errors.Wrap(err, "finding subject")
	}
	return subj, nil
}
