package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/KNICEX/signal-monitor/internal/entity"
	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/internal/service/monitor"
	"github.com/KNICEX/signal-monitor/internal/service/settings"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type InstrumentStore interface {
	Snapshot(ctx context.Context) ([]exchange.Instrument, error)
	Add(ctx context.Context, class exchange.AssetClass, short, symbol string) (bool, error)
	Remove(ctx context.Context, class exchange.AssetClass, short string) (bool, error)
	Resolve(ctx context.Context, class exchange.AssetClass, short string) (exchange.Instrument, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, ins exchange.Instrument, tf exchange.Interval, sys monitor.System) monitor.Analysis
}

type VolumeReader interface {
	Status(ctx context.Context) ([]monitor.VolumeStatus, error)
}

type SignalHistory interface {
	FindRecent(ctx context.Context, limit int) ([]entity.Signal, error)
}

// LedgerResetter 清空冷却账本, MA 监控随后重新预热
type LedgerResetter interface {
	Reset(ctx context.Context) error
}

type SettingsStore[T any] interface {
	Get() T
	Update(fn func(*T) error) (T, error)
}

type Handler struct {
	instruments InstrumentStore
	analyzer    Analyzer
	volume      VolumeReader
	signals     SignalHistory
	maSettings  SettingsStore[settings.MASettings]
	volSettings SettingsStore[settings.VolumeSettings]
	ledgers     []LedgerResetter
}

func NewHandler(instruments InstrumentStore, analyzer Analyzer, volume VolumeReader, signals SignalHistory,
	maSettings SettingsStore[settings.MASettings], volSettings SettingsStore[settings.VolumeSettings],
	ledgers ...LedgerResetter) *Handler {
	return &Handler{
		ledgers:     ledgers,
		instruments: instruments,
		analyzer:    analyzer,
		volume:      volume,
		signals:     signals,
		maSettings:  maSettings,
		volSettings: volSettings,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/instruments", h.ListInstruments)
	g.POST("/instruments", h.AddInstrument)
	g.DELETE("/instruments/:class/:short", h.RemoveInstrument)
	g.GET("/analysis/:class/:short", h.Analysis)
	g.GET("/volume", h.Volume)
	g.GET("/signals", h.Signals)
	g.DELETE("/ledger", h.ResetLedger)

	g.GET("/settings/ma", h.GetMASettings)
	g.PUT("/settings/ma/destinations/:kind", h.SetMADestination)
	g.PUT("/settings/ma/alert-types/:kind", h.SetMAAlertType)
	g.GET("/settings/volume", h.GetVolumeSettings)
	g.PUT("/settings/volume/destination", h.SetVolumeDestination)
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (h *Handler) ListInstruments(c echo.Context) error {
	list, err := h.instruments.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, lo.GroupBy(list, func(ins exchange.Instrument) exchange.AssetClass { return ins.Class }))
}

type addInstrumentReq struct {
	Class  string `json:"class" validate:"required,oneof=crypto equity"`
	Short  string `json:"short" validate:"required"`
	Symbol string `json:"symbol"`
}

func (h *Handler) AddInstrument(c echo.Context) error {
	var req addInstrumentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Symbol == "" {
		req.Symbol = req.Short
	}
	added, err := h.instruments.Add(c.Request().Context(), exchange.AssetClass(req.Class), req.Short, req.Symbol)
	switch {
	case errors.Is(err, monitor.ErrInvalidSymbol):
		return fail(c, http.StatusBadRequest, err)
	case err != nil:
		return err
	case !added:
		return fail(c, http.StatusConflict, errors.New("already tracked"))
	}
	return c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created"})
}

type instrumentPath struct {
	Class string `param:"class" validate:"oneof=crypto equity"`
	Short string `param:"short" validate:"required"`
}

func (h *Handler) RemoveInstrument(c echo.Context) error {
	var req instrumentPath
	if err := bind(c, &req); err != nil {
		return err
	}
	removed, err := h.instruments.Remove(c.Request().Context(), exchange.AssetClass(req.Class), req.Short)
	if err != nil {
		return err
	}
	if !removed {
		return fail(c, http.StatusNotFound, monitor.ErrNotTracked)
	}
	return c.NoContent(http.StatusNoContent)
}

type analysisReq struct {
	Class     string `param:"class" validate:"oneof=crypto equity"`
	Short     string `param:"short" validate:"required"`
	Timeframe string `query:"timeframe" default:"1d" validate:"oneof=5m 15m 1h 4h 1d"`
	System    string `query:"system" default:"short" validate:"oneof=short long"`
}

func (h *Handler) Analysis(c echo.Context) error {
	var req analysisReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	ins, err := h.instruments.Resolve(ctx, exchange.AssetClass(req.Class), req.Short)
	if errors.Is(err, monitor.ErrNotTracked) {
		return fail(c, http.StatusNotFound, err)
	}
	if err != nil {
		return err
	}
	sys, _ := monitor.SystemByName(req.System)
	res := h.analyzer.Analyze(ctx, ins, exchange.Interval(req.Timeframe), sys)
	return ok(c, res.Fields())
}

func (h *Handler) Volume(c echo.Context) error {
	status, err := h.volume.Status(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, status)
}

type signalsReq struct {
	Limit int `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

func (h *Handler) Signals(c echo.Context) error {
	var req signalsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.signals.FindRecent(c.Request().Context(), req.Limit)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *Handler) ResetLedger(c echo.Context) error {
	for _, l := range h.ledgers {
		if err := l.Reset(c.Request().Context()); err != nil {
			return err
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetMASettings(c echo.Context) error {
	return ok(c, h.maSettings.Get())
}

func (h *Handler) GetVolumeSettings(c echo.Context) error {
	return ok(c, h.volSettings.Get())
}

type destinationReq struct {
	Kind        string `param:"kind"`
	Destination string `json:"destination" validate:"omitempty,eq=log|startswith=tg:|url"`
}

func (h *Handler) SetMADestination(c echo.Context) error {
	var req destinationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.maSettings.Update(func(s *settings.MASettings) error {
		return s.SetDestination(req.Kind, req.Destination)
	})
	if err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	return ok(c, res)
}

type alertTypeReq struct {
	Kind    string `param:"kind"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) SetMAAlertType(c echo.Context) error {
	var req alertTypeReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.maSettings.Update(func(s *settings.MASettings) error {
		return s.SetEnabled(req.Kind, req.Enabled)
	})
	if err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	return ok(c, res)
}

func (h *Handler) SetVolumeDestination(c echo.Context) error {
	var req destinationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.volSettings.Update(func(s *settings.VolumeSettings) error {
		s.Destination = req.Destination
		return nil
	})
	if err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	return ok(c, res)
}
