// Command presale runs the presale interaction service. It refreshes the
// sale snapshot from the contract, exposes a read-only dashboard, and
// journals every contribute/claim submission.
//
// Usage:
//
//	presale --config config.yaml
//	presale --setup        (interactive configuration wizard)
//	presale                (uses CLI arguments, simulation platform)
//
// Environment variables (ethereum platform):
//
//	PRESALE_PRIVATE_KEY - hex private key used to sign transactions
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vadiminshakov/presale/config"
	"github.com/vadiminshakov/presale/internal"
	"github.com/vadiminshakov/presale/internal/controller"
	"github.com/vadiminshakov/presale/internal/gateway"
	"github.com/vadiminshakov/presale/internal/setup"
	"github.com/vadiminshakov/presale/internal/storage/receipts"
	"github.com/vadiminshakov/presale/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// optional .env with key material; absence is fine.
	_ = godotenv.Load()

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if conf.Setup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		conf, err = config.Load("config.gen.yaml")
		if err != nil {
			log.Fatal(err)
		}
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var gw controller.ContractGateway
	switch conf.Platform {
	case "ethereum":
		privateKey := os.Getenv("PRESALE_PRIVATE_KEY")
		ethGateway, err := gateway.NewEthereumGateway(ctx, conf.RPCURL, conf.ChainID, conf.ContractAddress, privateKey, logger)
		if err != nil {
			logger.Fatal("failed to create ethereum gateway", zap.Error(err))
		}
		defer ethGateway.Close()
		gw = ethGateway
	case "simulate":
		simGateway, err := gateway.NewSimulateGateway(gateway.SimulateConfig{
			HardCap:         conf.HardCap,
			TokenPrice:      conf.TokenPrice,
			MinContribution: conf.MinContribution,
			MaxContribution: conf.MaxContribution,
			Duration:        conf.SaleDuration,
			Identity:        conf.Identity,
		}, logger)
		if err != nil {
			logger.Fatal("failed to create simulated gateway", zap.Error(err))
		}
		gw = simGateway
	default:
		logger.Fatal("unsupported platform", zap.String("platform", conf.Platform))
	}

	receiptStore, err := receipts.NewWALStore(conf.ReceiptsDir)
	if err != nil {
		logger.Fatal("failed to open receipts store", zap.Error(err))
	}
	defer receiptStore.Close()

	ctrl, err := controller.New(gw, receiptStore, conf.ChainID, logger)
	if err != nil {
		logger.Fatal("failed to create presale controller", zap.Error(err))
	}

	app, err := internal.NewPresaleApp(conf, ctrl)
	if err != nil {
		logger.Fatal("failed to create presale app", zap.Error(err))
	}
	defer app.Close()

	g, gctx := errgroup.WithContext(ctx)

	if conf.WebAddr != "" {
		server := web.NewServer(conf.WebAddr, ctrl, receiptStore)
		g.Go(func() error {
			logger.Info("dashboard listening", zap.String("addr", conf.WebAddr))
			if len(conf.TLSDomains) > 0 {
				return server.StartWithAutoTLS(gctx, conf.TLSDomains, "")
			}
			return server.Start(gctx)
		})
	}

	g.Go(func() error {
		return app.Run(gctx, logger)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("service stopped with error", zap.Error(err))
	}
	logger.Info("presale service stopped")
}
