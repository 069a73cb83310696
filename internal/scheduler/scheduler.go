// Package scheduler sweeps resellers with auto-recharge enabled and runs
// their balance distribution on an interval.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/nalotext/smsmargin/internal/clock"
	"github.com/nalotext/smsmargin/internal/resellerctx"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler requires db, logger, clock, wallet service, and wallet repository")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	WalletSvc  walletdomain.Service
	WalletRepo walletdomain.Repository
	Config     Config `optional:"true"`
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	walletSvc  walletdomain.Service
	walletRepo walletdomain.Repository
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.WalletSvc == nil || p.WalletRepo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		walletSvc:  p.WalletSvc,
		walletRepo: p.WalletRepo,
	}, nil
}

// RunOnce sweeps every enabled auto-recharge config. A failing reseller is
// logged and skipped; the sweep continues.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var jobErr error
	offset := 0

	for {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		configs, err := s.walletRepo.ListEnabledAutoRecharge(ctx, s.db, s.cfg.BatchSize, offset)
		if err != nil {
			s.log.Error("auto distribute sweep fetch failed", zap.Error(err))
			return errors.Join(jobErr, err)
		}
		if len(configs) == 0 {
			break
		}

		for _, cfg := range configs {
			if ctx.Err() != nil {
				return errors.Join(jobErr, ctx.Err())
			}

			resellerCtx := resellerctx.WithResellerID(ctx, cfg.ResellerID)
			result, err := s.walletSvc.AutoDistribute(resellerCtx)
			if err != nil {
				jobErr = errors.Join(jobErr, err)
				s.log.Warn("auto distribute failed",
					zap.String("reseller_id", cfg.ResellerID.String()),
					zap.Error(err),
				)
				continue
			}
			if result.Performed {
				s.log.Info("auto distribute performed",
					zap.String("reseller_id", cfg.ResellerID.String()),
					zap.Float64("reseller_credits", result.Result.ResellerCredits),
				)
			}
		}

		if len(configs) < s.cfg.BatchSize {
			break
		}
		offset += s.cfg.BatchSize
	}

	return jobErr
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
