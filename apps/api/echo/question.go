package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
)

type questionApi struct {
	svc          question.Service
	validate     *validator.Validate
	maxBlobBytes int
}

func registerQuestionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc question.Service,
	validate *validator.Validate,
	conf *core.Config,
) {
	api := questionApi{
		svc:          svc,
		validate:     validate,
		maxBlobBytes: conf.Importer.MaxBlobBytes,
	}

	// the question bank is a back-office resource
	qg := g.Group("/questions", jwt, adminMiddleware)
	qg.POST("/analyze", api.analyze)
	qg.POST("/import", api.importQuestions)
	qg.POST("", api.create)
	qg.GET("", api.query)
	qg.DELETE("", api.destroyMultiple)
	qg.GET("/:id", api.retrieve)
	qg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *questionApi) analyze(ctx echo.Context) error {
	var data question.AnalyzeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalyzeRequest")
	}
	if err := data.Validate(api.validate, api.maxBlobBytes); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Analyze(data))
}

func (api *questionApi) importQuestions(ctx echo.Context) error {
	var data question.ImportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImportRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	op, err := getContextOperator(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context operator")
	}

	res, err := api.svc.Import(ctx.Request().Context(), data, op)
	if err != nil {
		return errors.Wrap(err, "importing questions")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *questionApi) create(ctx echo.Context) error {
	var data question.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *questionApi) query(ctx echo.Context) error {
	filter := new(question.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []question.Question{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	questions, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if questions == nil {
		questions = []question.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *questionApi) retrieve(ctx echo.Context) error {
	q, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding question by ID")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) destroy(ctx echo.Context) error {
	n, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting question")
	}
	if n == 0 {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *questionApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	n, err := api.svc.Delete(ctx.Request().Context(), query.IDs...)
	if err != nil {
		return errors.Wrap(err, "deleting questions")
	}
	return ctx.JSON(http.StatusOK, DeletedResponse{Deleted: n})
}
