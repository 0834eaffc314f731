package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/ark-network/counter/internal/app-config"
	"github.com/ark-network/counter/internal/config"
	httpservice "github.com/ark-network/counter/internal/interface/http"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	startCmd = cli.Command{
		Name:   "start",
		Usage:  "Start the daemon, this is also the default action",
		Action: startAction,
	}
	configCmd = cli.Command{
		Name:   "config",
		Usage:  "Print the configuration loaded from the environment",
		Action: configAction,
	}
	versionCmd = cli.Command{
		Name:  "version",
		Usage: "Print version info",
		Action: func(*cli.Context) error {
			fmt.Printf("version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
			return nil
		},
	}
)

func startAction(_ *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	svcConfig := httpservice.Config{
		Port: cfg.Port,
	}

	appConfig := &appconfig.Config{
		DbType:              cfg.DbType,
		EventDbType:         cfg.EventDbType,
		DbDir:               cfg.DbDir,
		EscrowType:          cfg.EscrowType,
		RedisURL:            cfg.RedisURL,
		InitialFunding:      cfg.InitialFunding,
		OracleType:          cfg.OracleType,
		OracleFulfillDelay:  cfg.OracleFulfillDelay,
		OracleAutoSettle:    cfg.OracleAutoSettle,
		ProgramID:           cfg.ProgramID,
		FunctionID:          cfg.FunctionID,
		StaleRoundThreshold: cfg.StaleRoundThreshold,
		StaleCheckInterval:  cfg.StaleCheckInterval,
	}
	svc, err := httpservice.NewService(svcConfig, appConfig)
	if err != nil {
		return err
	}

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
	return nil
}

func configAction(_ *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}
	fmt.Println(cfg)
	return nil
}
