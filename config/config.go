package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lockdropd/crypto"
	"lockdropd/native/lockdrop"
)

// Config carries the daemon's runtime settings. The Genesis block seeds the
// ledger configuration on first start and is ignored once the ledger is
// initialised.
type Config struct {
	RPCAddress      string  `toml:"RPCAddress"`
	DataDir         string  `toml:"DataDir"`
	Env             string  `toml:"Env"`
	VenueBaseURL    string  `toml:"VenueBaseURL"`
	ContractAddress string  `toml:"ContractAddress"`
	Genesis         Genesis `toml:"Genesis"`
}

// Genesis mirrors the ledger configuration in file-friendly form: bech32
// addresses and a decimal incentive pool.
type Genesis struct {
	Owner                  string `toml:"Owner"`
	Venue                  string `toml:"Venue"`
	ShareToken             string `toml:"ShareToken"`
	RewardToken            string `toml:"RewardToken"`
	IncentiveToken         string `toml:"IncentiveToken"`
	DelegationProgram      string `toml:"DelegationProgram"`
	DepositDenom           string `toml:"DepositDenom"`
	InitTimestamp          uint64 `toml:"InitTimestamp"`
	DepositWindow          uint64 `toml:"DepositWindow"`
	WithdrawalWindow       uint64 `toml:"WithdrawalWindow"`
	MinLockDuration        uint64 `toml:"MinLockDuration"`
	MaxLockDuration        uint64 `toml:"MaxLockDuration"`
	SecondsPerDurationUnit uint64 `toml:"SecondsPerDurationUnit"`
	WeightMultiplier       uint64 `toml:"WeightMultiplier"`
	WeightDivider          uint64 `toml:"WeightDivider"`
	TotalIncentivePool     string `toml:"TotalIncentivePool"`
}

// Load reads the configuration from path, creating a default file when none
// exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./lockdrop-data"
	}
	return cfg, nil
}

// Validate checks the fields the daemon cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return errors.New("config: RPCAddress required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: DataDir required")
	}
	if strings.TrimSpace(c.VenueBaseURL) == "" {
		return errors.New("config: VenueBaseURL required")
	}
	if _, err := crypto.DecodeAddress(strings.TrimSpace(c.ContractAddress)); err != nil {
		return fmt.Errorf("config: ContractAddress: %w", err)
	}
	return nil
}

// Contract returns the ledger's own decoded address.
func (c *Config) Contract() (crypto.Address, error) {
	return crypto.DecodeAddress(strings.TrimSpace(c.ContractAddress))
}

// EngineConfig converts the genesis block into the ledger configuration. The
// delegation program may be left empty and assigned later by the owner.
func (g *Genesis) EngineConfig() (*lockdrop.Config, error) {
	owner, err := decodeGenesisAddress("Owner", g.Owner)
	if err != nil {
		return nil, err
	}
	venue, err := decodeGenesisAddress("Venue", g.Venue)
	if err != nil {
		return nil, err
	}
	shareToken, err := decodeGenesisAddress("ShareToken", g.ShareToken)
	if err != nil {
		return nil, err
	}
	rewardToken, err := decodeGenesisAddress("RewardToken", g.RewardToken)
	if err != nil {
		return nil, err
	}
	incentiveToken, err := decodeGenesisAddress("IncentiveToken", g.IncentiveToken)
	if err != nil {
		return nil, err
	}
	var program crypto.Address
	if strings.TrimSpace(g.DelegationProgram) != "" {
		program, err = decodeGenesisAddress("DelegationProgram", g.DelegationProgram)
		if err != nil {
			return nil, err
		}
	}

	pool, ok := new(big.Int).SetString(strings.TrimSpace(g.TotalIncentivePool), 10)
	if !ok {
		return nil, fmt.Errorf("config: Genesis.TotalIncentivePool: malformed amount %q", g.TotalIncentivePool)
	}

	return &lockdrop.Config{
		Owner:                  owner,
		Venue:                  venue,
		ShareToken:             shareToken,
		RewardToken:            rewardToken,
		IncentiveToken:         incentiveToken,
		DelegationProgram:      program,
		DepositDenom:           strings.TrimSpace(g.DepositDenom),
		InitTimestamp:          g.InitTimestamp,
		DepositWindow:          g.DepositWindow,
		WithdrawalWindow:       g.WithdrawalWindow,
		MinLockDuration:        g.MinLockDuration,
		MaxLockDuration:        g.MaxLockDuration,
		SecondsPerDurationUnit: g.SecondsPerDurationUnit,
		WeightMultiplier:       g.WeightMultiplier,
		WeightDivider:          g.WeightDivider,
		TotalIncentivePool:     pool,
	}, nil
}

func decodeGenesisAddress(field, value string) (crypto.Address, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return crypto.Address{}, fmt.Errorf("config: Genesis.%s: %w", field, err)
	}
	return addr, nil
}

// createDefault writes a starter configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:   ":8545",
		DataDir:      "./lockdrop-data",
		VenueBaseURL: "http://127.0.0.1:9545",
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
