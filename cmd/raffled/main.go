package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend/internal/automation"
	"backend/internal/chain"
	"backend/internal/config"
	"backend/internal/drand"
	"backend/internal/engine"
	"backend/internal/logger"
	"backend/internal/storage"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "raffled"
	app.Usage = "verifiable-randomness raffle engine"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env",
			Usage: "path to a .env file",
		},
		cli.BoolFlag{
			Name:  "no-automation",
			Usage: "disable the settlement sweep regardless of AUTOMATION_ENABLED",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.Load(c.String("env"))

	logger.Initialize(logger.Configuration{
		LogFile:   cfg.LogFile,
		ErrorFile: cfg.ErrorFile,
		Level:     cfg.LogLevel,
		Console:   cfg.Console,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.NewSqliteStorage(cfg.DatabasePath)
	eng := engine.New(store, chain.Bech32Validator{HRP: cfg.AddressHRP})

	if cfg.Admin != "" {
		var bounty *chain.Coin
		if cfg.BountyDenom != "" {
			bounty = &chain.Coin{Denom: cfg.BountyDenom, Amount: cfg.BountyAmount}
		}
		if err := eng.InitConfig(cfg.Admin, cfg.ProtocolFeeBps, bounty, cfg.DrandPubkey); err != nil {
			return err
		}
	}

	if cfg.AutomationEnabled && !c.Bool("no-automation") {
		if cfg.OperatorAddress == "" {
			return fmt.Errorf("OPERATOR_ADDRESS is required when automation is enabled")
		}
		client := drand.NewClient(cfg.DrandURL, 10*time.Second)
		go automation.New(ctx, eng, client, cfg.OperatorAddress, cfg.AutomationInterval).Run()
	} else {
		logger.Info("automation disabled")
	}

	<-waitForInterrupt()
	logger.Info("interrupt received, shutting down")
	cancel()
	return nil
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
