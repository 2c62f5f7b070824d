package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/holiman/uint256"
	"github.com/kelseyhightower/envconfig"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/app"
	"github.com/galleon-dao/galleon/crypto"
	"github.com/galleon-dao/galleon/store"
	"github.com/galleon-dao/galleon/x/dao"
	"github.com/galleon-dao/galleon/x/relay"
)

// Config is read from the environment with the RELAYD prefix, eg.
// RELAYD_LISTEN_ADDR.
type Config struct {
	ListenAddr       string `default:":8545" split_words:"true"`
	DomainName       string `default:"Galleon" split_words:"true"`
	DomainVersion    string `default:"1" split_words:"true"`
	ChainID          uint64 `default:"1337" split_words:"true"`
	ForwarderAddress string `required:"true" split_words:"true"`
	LedgerAddress    string `required:"true" split_words:"true"`
	MinVoteStake     string `default:"1" split_words:"true"`
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	if err := run(logger); err != nil {
		logger.Error("relayd failed", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger) error {
	var conf Config
	if err := envconfig.Process("relayd", &conf); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	fwdAddr, err := galleon.ParseAddress(conf.ForwarderAddress)
	if err != nil {
		return fmt.Errorf("forwarder address: %w", err)
	}
	ledgerAddr, err := galleon.ParseAddress(conf.LedgerAddress)
	if err != nil {
		return fmt.Errorf("ledger address: %w", err)
	}
	minStake, err := uint256.FromDecimal(conf.MinVoteStake)
	if err != nil {
		return fmt.Errorf("min vote stake: %w", err)
	}

	disp := app.NewDispatcher()
	domain := relay.Domain{
		Name:              conf.DomainName,
		Version:           conf.DomainVersion,
		ChainID:           conf.ChainID,
		VerifyingContract: fwdAddr,
	}
	fwd, err := relay.NewForwarder(domain, fwdAddr, crypto.Secp256k1{}, disp)
	if err != nil {
		return fmt.Errorf("forwarder: %w", err)
	}
	ledger, err := dao.NewLedger(ledgerAddr, fwdAddr, minStake, disp)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	disp.Register(ledgerAddr, ledger)

	now := func() galleon.Context {
		return galleon.WithBlockTime(context.Background(), time.Now().UTC())
	}
	srv := NewServer(fwd, store.MemStore(), now, logger)

	logger.Info("relayd listening",
		"addr", conf.ListenAddr,
		"forwarder", fwdAddr,
		"ledger", ledgerAddr,
		"chain_id", conf.ChainID,
	)
	return http.ListenAndServe(conf.ListenAddr, srv.Router())
}
