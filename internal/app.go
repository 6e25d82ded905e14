package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/presale/config"
	"github.com/vadiminshakov/presale/internal/controller"
	"github.com/vadiminshakov/presale/internal/domain"
	"go.uber.org/zap"
)

// PresaleApp drives one presale interaction surface: it owns the controller
// and refreshes the sale snapshot on a fixed cadence.
type PresaleApp struct {
	Controller *controller.PresaleController
	Config     config.Config
}

// NewPresaleApp creates the application around a gateway and receipt journal.
func NewPresaleApp(conf config.Config, ctrl *controller.PresaleController) (*PresaleApp, error) {
	if ctrl == nil {
		return nil, errors.New("controller is required")
	}
	return &PresaleApp{
		Controller: ctrl,
		Config:     conf,
	}, nil
}

// Close marks the interaction surface as closed.
func (a *PresaleApp) Close() {
	a.Controller.Close()
}

// Run executes the refresh loop until the context is cancelled.
func (a *PresaleApp) Run(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	// initial fetch; a "not configured" sale is a waiting state, not an error.
	if err := a.Controller.Refresh(ctx, a.Config.Identity); err != nil {
		if errors.Is(err, controller.ErrNotConfigured) {
			logger.Info("presale contract not deployed yet, waiting")
		} else {
			logger.Warn("initial refresh failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(a.Config.PollInterval)
	defer ticker.Stop()

	logger.Info("starting presale refresh loop",
		zap.Duration("poll_interval", a.Config.PollInterval),
		zap.String("identity", a.Config.Identity))

	for {
		select {
		case <-ctx.Done():
			logger.Info("context done, stopping presale refresh loop")
			return ctx.Err()
		case <-ticker.C:
			if err := a.Controller.Refresh(ctx, a.Config.Identity); err != nil {
				switch {
				case errors.Is(err, controller.ErrNotConfigured):
					logger.Info("presale contract not deployed yet, waiting")
				case errors.Is(err, controller.ErrWrongNetwork):
					logger.Warn("connected node is on the wrong chain",
						zap.Int64("expected_chain", a.Config.ChainID))
				default:
					logger.Error("refresh failed", zap.Error(err))
				}
				continue
			}

			view := a.Controller.View()
			if !view.HasSnapshot {
				continue
			}
			logger.Debug("sale snapshot refreshed",
				zap.String("progress_percent", domain.ProgressPercent(view.Snapshot).StringFixed(2)),
				zap.String("raised", view.Snapshot.TotalRaised.String()),
				zap.Int64("participants", view.Snapshot.ParticipantCount),
				zap.String("time_remaining", domain.FormatTimeRemaining(view.Snapshot.TimeRemaining)))
		}
	}
}
