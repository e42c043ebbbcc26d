package subject

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/simulado/core"
)

func (ns *NewSubject) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	ns.Color = core.CleanString(ns.Color, true /* lower */)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, ns.Name)
}
