//   Copyright (C) 2018 TASChain
//
//   This program is free software: you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation, either version 3 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License
//   along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cli

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/governance"
	"github.com/taschain/tasvote/ledger"
	"github.com/taschain/tasvote/middleware"
	"github.com/taschain/tasvote/middleware/notify"
	time2 "github.com/taschain/tasvote/middleware/time"
	"github.com/taschain/tasvote/storage/tasdb"
	"github.com/taschain/tasvote/taslog"
	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	govPrefix    = "gov"
	ledgerPrefix = "ledger"
)

var eventTopics = []string{
	governance.TopicProposalCreated,
	governance.TopicProposalTallied,
	governance.TopicVoteApplied,
	governance.TopicVoteRejected,
	governance.TopicStakeWithdrawing,
	governance.TopicStakeWithdrawn,
	governance.TopicStakeRestored,
}

// TasVote runs one command against the vote contract and the token ledger
// kept in a local leveldb directory.
type TasVote struct {
	config   *governance.Config
	ds       *tasdb.TasDataSource
	token    *ledger.TokenLedger
	contract *governance.Contract
	events   []*governance.EventMessage
	logger   taslog.Logger
}

func NewTasVote() *TasVote {
	return &TasVote{}
}

func (tv *TasVote) Run() {
	app := kingpin.New("tasvote", "Token weighted voting on time boxed proposals.")
	app.HelpFlag.Short('h')
	configFile := app.Flag("config", "Config file").Default("tasvote.ini").String()
	nowFlag := app.Flag("now", "pin the clock to this unix time").Default("0").Int64()
	ntpFlag := app.Flag("ntp", "use ntp corrected time").Bool()

	createCmd := app.Command("create", "create a proposal")
	descCreate := createCmd.Flag("desc", "description").Default("").String()
	startCreate := createCmd.Flag("start", "voting opens at this unix time").Required().Int64()
	endCreate := createCmd.Flag("end", "voting closes after this unix time").Required().Int64()
	optionsCreate := OptionListParam(createCmd.Flag("option", "option name, repeatable").Short('o').Required())
	assetCreate := createCmd.Flag("asset", "asset ledger accepted for stakes, default from config").Default("").String()

	voteCmd := app.Command("vote", "stake an amount behind an option")
	fromVote := AddressParam(voteCmd.Flag("from", "voter account").Short('f').Required())
	proposalVote := voteCmd.Flag("proposal", "proposal id").Short('p').Required().Uint64()
	optionVote := voteCmd.Flag("option", "option name").Short('o').Required().String()
	amountVote := CoinParam(voteCmd.Flag("amount", "amount, such as 100, 5tas or 300kra").Short('v').Required())
	assetVote := voteCmd.Flag("asset", "asset ledger, default from config").Default("").String()

	tallyCmd := app.Command("tally", "record the winner of a closed proposal")
	proposalTally := tallyCmd.Flag("proposal", "proposal id").Short('p').Required().Uint64()

	unstakeCmd := app.Command("unstake", "take back the stake of a closed proposal")
	fromUnstake := AddressParam(unstakeCmd.Flag("from", "voter account").Short('f').Required())
	proposalUnstake := unstakeCmd.Flag("proposal", "proposal id").Short('p').Required().Uint64()

	resultsCmd := app.Command("results", "show the current totals of a proposal")
	proposalResults := resultsCmd.Flag("proposal", "proposal id").Short('p').Required().Uint64()

	proposalCmd := app.Command("proposal", "dump a proposal")
	proposalShow := proposalCmd.Flag("proposal", "proposal id").Short('p').Required().Uint64()

	mintCmd := app.Command("mint", "credit tokens to an account on the local ledger")
	toMint := AddressParam(mintCmd.Flag("to", "account").Short('t').Required())
	amountMint := CoinParam(mintCmd.Flag("amount", "amount").Short('v').Required())

	balanceCmd := app.Command("balance", "get the balance of an account on the local ledger")
	accountBalance := AddressParam(balanceCmd.Flag("account", "account").Short('a').Required())

	command, err := app.Parse(os.Args[1:])
	if err != nil {
		kingpin.Fatalf("%s, try --help", err)
	}

	if err := tv.init(*configFile, *nowFlag, *ntpFlag); err != nil {
		fmt.Println("init error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch command {
	case createCmd.FullCommand():
		err = tv.create(*descCreate, *startCreate, *endCreate, *optionsCreate, *assetCreate)
	case voteCmd.FullCommand():
		err = tv.vote(ctx, *fromVote, *proposalVote, *optionVote, amountVote, *assetVote)
	case tallyCmd.FullCommand():
		err = tv.tally(*proposalTally)
	case unstakeCmd.FullCommand():
		err = tv.unstake(ctx, *fromUnstake, *proposalUnstake)
	case resultsCmd.FullCommand():
		err = tv.results(*proposalResults)
	case proposalCmd.FullCommand():
		err = tv.showProposal(*proposalShow)
	case mintCmd.FullCommand():
		err = tv.mint(*toMint, amountMint)
	case balanceCmd.FullCommand():
		err = tv.balance(*accountBalance)
	}
	tv.printEvents(os.Stdout)
	tv.close()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func (tv *TasVote) init(configPath string, now int64, ntp bool) error {
	common.InitConf(configPath)
	cfg, err := governance.LoadConfig(common.GlobalConf)
	if err != nil {
		return err
	}
	tv.config = cfg
	tv.logger = taslog.GetLogger(taslog.ConsoleConfig)
	common.DefaultLogger = tv.logger
	taslog.InitSlowLogger(cfg.LoggerName)

	middleware.InitMiddleware(ntp && now == 0)
	clock := time2.TSInstance
	if now != 0 {
		clock = time2.NewManualClock(time2.Int64ToTimeStamp(now))
	}

	tv.ds, err = tasdb.NewDataSource(cfg.Database)
	if err != nil {
		return errors.Wrapf(err, "open %v", cfg.Database)
	}
	govDB, err := tv.ds.NewPrefixDatabase(govPrefix)
	if err != nil {
		return err
	}
	ledgerDB, err := tv.ds.NewPrefixDatabase(ledgerPrefix)
	if err != nil {
		return err
	}

	store, err := governance.NewProposalStore(govDB, cfg.ProposalCache)
	if err != nil {
		return err
	}
	tv.token = ledger.NewTokenLedger(cfg.Asset, ledgerDB, tv.logger)

	notify.BUS.SubscribeAll(eventTopics, tv.onEvent)
	tv.contract, err = governance.NewContract(governance.ContractParam{
		ID:      cfg.Contract,
		Store:   store,
		Ledgers: ledger.NewDirectory(tv.token),
		Clock:   clock,
		Logger:  taslog.GetLoggerByName(cfg.LoggerName),
		Bus:     notify.BUS,
	})
	if err != nil {
		return err
	}
	tv.token.Register(cfg.Contract, tv.contract)
	return nil
}

func (tv *TasVote) close() {
	if tv.contract != nil {
		tv.contract.Close()
	}
	if tv.token != nil {
		tv.token.Close()
	}
	if tv.ds != nil {
		tv.ds.Close()
	}
	taslog.Close()
}

// onEvent runs on the goroutine of the command, the bus delivers synchronously.
func (tv *TasVote) onEvent(msg notify.Message) {
	if ev, ok := msg.(*governance.EventMessage); ok {
		tv.events = append(tv.events, ev)
	}
}

// printEvents shows the events published by the command in publish order.
func (tv *TasVote) printEvents(w io.Writer) {
	for _, ev := range tv.events {
		fmt.Fprintln(w, formatEvent(ev))
	}
	tv.events = nil
}

func formatEvent(ev *governance.EventMessage) string {
	s := fmt.Sprintf("event %v proposal=%v", ev.Topic, ev.ProposalID)
	if ev.Voter != "" {
		s += fmt.Sprintf(" voter=%v", ev.Voter)
	}
	if ev.Option != "" {
		s += fmt.Sprintf(" option=%v", ev.Option)
	}
	if ev.Amount != nil && ev.Amount.Sign() > 0 {
		s += fmt.Sprintf(" amount=%v", ev.Amount)
	}
	if ev.TransferID != "" {
		s += fmt.Sprintf(" transfer=%v", ev.TransferID)
	}
	if ev.Winner != nil {
		s += fmt.Sprintf(" winner=%v", *ev.Winner)
	}
	if ev.Err != nil {
		s += fmt.Sprintf(" err=%q", ev.Err.Error())
	}
	return s
}

func (tv *TasVote) asset(s string) (common.Address, error) {
	if s == "" {
		return tv.config.Asset, nil
	}
	return common.StringToAddress(s)
}

func (tv *TasVote) create(desc string, start, end int64, options []string, assetStr string) error {
	asset, err := tv.asset(assetStr)
	if err != nil {
		return err
	}
	id, err := tv.contract.CreateProposal(desc, time2.Int64ToTimeStamp(start), time2.Int64ToTimeStamp(end), options, asset)
	if err != nil {
		return err
	}
	fmt.Printf("proposal %v created\n", id)
	return nil
}

func (tv *TasVote) vote(ctx context.Context, from common.Address, id uint64, option string, amount *big.Int, assetStr string) error {
	asset, err := tv.asset(assetStr)
	if err != nil {
		return err
	}
	reqID, err := tv.contract.Vote(ctx, from, id, option, amount, asset)
	if err != nil {
		return err
	}
	tv.token.Drain()
	state, err := tv.contract.RequestState(reqID)
	if err != nil {
		return err
	}
	fmt.Printf("request %v %v\n", reqID, state)
	return nil
}

func (tv *TasVote) tally(id uint64) error {
	winner, err := tv.contract.Tally(id)
	if err != nil {
		return err
	}
	if winner == nil {
		fmt.Printf("proposal %v: no winner\n", id)
	} else {
		fmt.Printf("proposal %v: winner %v\n", id, *winner)
	}
	return nil
}

func (tv *TasVote) unstake(ctx context.Context, from common.Address, id uint64) error {
	transferID, err := tv.contract.Unstake(ctx, from, id)
	if err != nil {
		return err
	}
	tv.token.Drain()
	fmt.Printf("refund %v sent\n", transferID)
	return nil
}

func (tv *TasVote) results(id uint64) error {
	res, err := tv.contract.GetResults(id)
	if err != nil {
		return err
	}
	for _, o := range res.Totals {
		fmt.Printf("%v\t%v\n", o.Name, o.Votes)
	}
	if res.WinningOption != nil {
		fmt.Printf("leading: %v\n", *res.WinningOption)
	}
	return nil
}

func (tv *TasVote) showProposal(id uint64) error {
	p, err := tv.contract.GetProposal(id)
	if err != nil {
		return err
	}
	spew.Dump(p)
	return nil
}

func (tv *TasVote) mint(to common.Address, amount *big.Int) error {
	if err := tv.token.Mint(to, amount); err != nil {
		return err
	}
	return tv.balance(to)
}

func (tv *TasVote) balance(addr common.Address) error {
	b, err := tv.token.BalanceOf(addr)
	if err != nil {
		return err
	}
	fmt.Printf("%v: %v\n", addr, b)
	return nil
}
