package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lockdropd/config"
	"lockdropd/native/lockdrop"
	"lockdropd/native/venue"
	"lockdropd/observability/logging"
	"lockdropd/rpc"
	"lockdropd/storage"
)

// instructionLogger hands outbound instructions to the settlement layer by
// recording them; the host environment watches the log stream and executes
// the transfers. Delivery never fails locally, so a transaction only unwinds
// on engine errors.
type instructionLogger struct {
	log *slog.Logger
}

func (l *instructionLogger) Deliver(ins lockdrop.Instruction) error {
	l.log.Info("outbound instruction", "instruction", fmt.Sprintf("%#v", ins))
	return nil
}

func main() {
	configPath := flag.String("config", "./lockdropd.toml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup("lockdropd", cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	contract, err := cfg.Contract()
	if err != nil {
		log.Error("invalid contract address", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		log.Error("open database", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	venueClient, err := venue.NewClient(cfg.VenueBaseURL)
	if err != nil {
		log.Error("configure venue client", "error", err)
		os.Exit(1)
	}

	processor := lockdrop.NewProcessor(db, contract, venueClient, &instructionLogger{log: log})

	if err := initializeIfNeeded(processor, cfg, log); err != nil {
		log.Error("initialize ledger", "error", err)
		os.Exit(1)
	}

	server := rpc.NewServer(processor, log)
	if err := server.Start(cfg.RPCAddress); err != nil {
		log.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}

// initializeIfNeeded seeds the ledger from the genesis block on first start.
// An already-initialised ledger keeps its stored configuration; the genesis
// section is then ignored.
func initializeIfNeeded(processor *lockdrop.Processor, cfg *config.Config, log *slog.Logger) error {
	initialized := false
	err := processor.View(0, func(e *lockdrop.Engine) error {
		if _, err := e.QueryConfig(); err == nil {
			initialized = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if initialized {
		log.Info("ledger already initialised, ignoring genesis section")
		return nil
	}

	engineCfg, err := cfg.Genesis.EngineConfig()
	if err != nil {
		return err
	}
	now := uint64(time.Now().Unix())
	if err := processor.Initialize(engineCfg, now); err != nil {
		return err
	}
	log.Info("ledger initialised from genesis",
		"initTimestamp", engineCfg.InitTimestamp,
		"depositWindow", engineCfg.DepositWindow,
		"withdrawalWindow", engineCfg.WithdrawalWindow)
	return nil
}
