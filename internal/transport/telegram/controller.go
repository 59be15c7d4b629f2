package telegram

import (
	"context"
	"errors"
	"log/slog"

	"github.com/investbi/portfolio_tracker_bot/config"
	"github.com/investbi/portfolio_tracker_bot/internal/converter/telebotConverter"
	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/service"
	"github.com/investbi/portfolio_tracker_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const returnsTailLength = 10

const msgInternalError = "something went wrong, try again later"

type PortfolioService interface {
	GetLatestValuation(ctx context.Context) (model.Valuation, error)
	RefreshValuation(ctx context.Context) (model.Valuation, error)
	GenerateReport(ctx context.Context) (downloadLink string, err error)
}

type Controller struct {
	cfg *config.Config
	srv PortfolioService
}

func NewController(cfg *config.Config, srv PortfolioService) *Controller {
	return &Controller{cfg: cfg, srv: srv}
}

func (ctl *Controller) Start(c tele.Context) error {
	return c.Send("commands:\n" +
		"/patrimony - current portfolio value and returns summary\n" +
		"/returns - recent daily returns\n" +
		"/refresh - recompute the valuation now\n" +
		"/report - xlsx report download link")
}

func (ctl *Controller) Patrimony(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	v, err := ctl.latestOrRefresh(ctx)
	if err != nil {
		return c.Send(msgInternalError)
	}

	return c.Send(telebotConverter.FormatSummary(v))
}

func (ctl *Controller) Returns(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	v, err := ctl.latestOrRefresh(ctx)
	if err != nil {
		return c.Send(msgInternalError)
	}

	return c.Send(telebotConverter.FormatReturns(v, returnsTailLength))
}

func (ctl *Controller) Refresh(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	v, err := ctl.srv.RefreshValuation(ctx)
	if err != nil {
		slog.Error("got error from srv.RefreshValuation", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(msgInternalError)
	}

	return c.Send(telebotConverter.FormatSummary(v))
}

func (ctl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	link, err := ctl.srv.GenerateReport(ctx)
	if err != nil {
		slog.Error("got error from srv.GenerateReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(msgInternalError)
	}

	return c.Send("report: " + link)
}

func (ctl *Controller) latestOrRefresh(ctx context.Context) (model.Valuation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	v, err := ctl.srv.GetLatestValuation(ctx)
	if errors.Is(err, service.ErrNoValuation) {
		v, err = ctl.srv.RefreshValuation(ctx)
	}
	if err != nil {
		slog.Error("can't get valuation", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Valuation{}, err
	}

	return v, nil
}
