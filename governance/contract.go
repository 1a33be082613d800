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

// Package governance implements token-weighted voting on time-boxed proposals.
// Voters stake a fungible asset held by an external ledger behind one option,
// the option with the largest stake wins once the window closes, and stakes
// are refunded through the same ledger afterwards.
package governance

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/ledger"
	"github.com/taschain/tasvote/middleware"
	"github.com/taschain/tasvote/middleware/notify"
	"github.com/taschain/tasvote/middleware/ticker"
	"github.com/taschain/tasvote/middleware/time"
	"github.com/taschain/tasvote/taslog"
	"gopkg.in/fatih/set.v0"
)

// LedgerResolver finds the asset ledger behind an account id.
type LedgerResolver interface {
	Lookup(id common.Address) (ledger.AssetLedger, error)
}

type ContractParam struct {
	// ID is the contract's own account on the asset ledgers
	ID      common.Address
	Store   *ProposalStore
	Ledgers LedgerResolver

	Clock    time.TimeService
	Logger   taslog.Logger
	Bus      *notify.Bus
	Registry metrics.Registry

	// Ticker, when set, forgets request ids never confirmed after
	// RequestTTL to 2*RequestTTL ticks
	Ticker     *ticker.GlobalTicker
	RequestTTL uint32
}

const DefaultRequestTTL = 600

// Contract owns every proposal, their stakes and the applied request ids.
// Operations are serialized by one lock, requests to a ledger are sent after
// it is released so a ledger may call back into the contract synchronously.
type Contract struct {
	id      common.Address
	store   *ProposalStore
	ledgers LedgerResolver

	clock    time.TimeService
	logger   taslog.Logger
	bus      *notify.Bus
	registry metrics.Registry
	meters   *govMetrics

	// request ids sent to a ledger and not confirmed yet, two generations
	reqLock   sync.Mutex
	requested set.Interface
	expiring  set.Interface
	ticker    *ticker.GlobalTicker

	lock *middleware.Loglock
}

func NewContract(param ContractParam) (*Contract, error) {
	if !param.ID.IsValid() {
		return nil, errors.Wrapf(ErrInvalidAddress, "contract id %q", param.ID)
	}
	if param.Store == nil {
		return nil, errors.New("nil proposal store")
	}
	if param.Ledgers == nil {
		return nil, errors.New("nil ledger resolver")
	}
	c := &Contract{
		id:        param.ID,
		store:     param.Store,
		ledgers:   param.Ledgers,
		clock:     param.Clock,
		logger:    param.Logger,
		bus:       param.Bus,
		registry:  param.Registry,
		requested: set.New(set.NonThreadSafe),
		expiring:  set.New(set.NonThreadSafe),
		ticker:    param.Ticker,
	}
	if c.clock == nil {
		c.clock = time.TSInstance
	}
	if c.logger == nil {
		c.logger = taslog.GetLoggerByName(DefaultLoggerName)
	}
	if c.registry == nil {
		c.registry = metrics.NewRegistry()
	}
	c.meters = newGovMetrics(c.registry)
	c.lock = middleware.NewLoglock("contract "+c.id.String(), c.logger)

	if c.ticker != nil {
		ttl := param.RequestTTL
		if ttl == 0 {
			ttl = DefaultRequestTTL
		}
		c.ticker.RegisterPeriodicRoutine(c.routineName(), c.expireRequests, ttl)
		c.ticker.StartTickerRoutine(c.routineName(), false)
	}
	return c, nil
}

// Close stops the request expiry routine. Stored state is untouched.
func (c *Contract) Close() {
	if c.ticker != nil {
		c.ticker.RemoveRoutine(c.routineName())
	}
}

func (c *Contract) routineName() string {
	return "gov_requests_" + c.id.String()
}

func (c *Contract) addRequest(id string) {
	c.reqLock.Lock()
	defer c.reqLock.Unlock()
	c.requested.Add(id)
}

func (c *Contract) dropRequest(id string) {
	c.reqLock.Lock()
	defer c.reqLock.Unlock()
	c.requested.Remove(id)
	c.expiring.Remove(id)
}

func (c *Contract) hasRequest(id string) bool {
	c.reqLock.Lock()
	defer c.reqLock.Unlock()
	return c.requested.Has(id) || c.expiring.Has(id)
}

// rotateRequests forgets the ids that survived a whole generation and returns their count.
func (c *Contract) rotateRequests() int {
	c.reqLock.Lock()
	defer c.reqLock.Unlock()
	n := c.expiring.Size()
	c.expiring = c.requested
	c.requested = set.New(set.NonThreadSafe)
	return n
}

func (c *Contract) expireRequests() bool {
	if n := c.rotateRequests(); n > 0 {
		c.meters.expired.Inc(int64(n))
		c.logger.Infof("%v vote requests never confirmed, forgotten", n)
	}
	return true
}

func (c *Contract) ID() common.Address {
	return c.id
}

func (c *Contract) Metrics() metrics.Registry {
	return c.registry
}

func (c *Contract) publish(msg *EventMessage) {
	if c.bus != nil {
		c.bus.Publish(msg)
	}
}

// commit persists the changed proposals, refusing any that would break the stake accounting.
func (c *Contract) commit(tx *storeTx) error {
	for _, p := range tx.proposals {
		if !p.Balanced() {
			c.logger.Errorf("proposal %v unbalanced: votes %v, staked %v, withdrawn %v", p.ID, p.TotalVotes(), p.TotalStaked(), p.Withdrawn)
			return errors.Errorf("proposal %v stake accounting broken", p.ID)
		}
	}
	return tx.commit()
}

// CreateProposal registers a new proposal and returns its id.
func (c *Contract) CreateProposal(description string, start, end time.TimeStamp, options []string, asset common.Address) (uint64, error) {
	if err := validateProposal(start, end, options, asset); err != nil {
		return 0, errors.Wrap(ErrInvalidProposal, err.Error())
	}

	id, err := c.createProposal(description, start, end, options, asset)
	if err != nil {
		return 0, err
	}
	c.publish(&EventMessage{Topic: TopicProposalCreated, ProposalID: id})
	return id, nil
}

func (c *Contract) createProposal(description string, start, end time.TimeStamp, options []string, asset common.Address) (uint64, error) {
	c.lock.Lock("CreateProposal")
	defer c.lock.Unlock()

	id := c.store.Count()
	p := newProposal(id, description, start, end, options, asset)
	tx := c.store.begin()
	if err := tx.putProposal(p); err != nil {
		return 0, err
	}
	if err := tx.setCount(id + 1); err != nil {
		return 0, err
	}
	if err := c.commit(tx); err != nil {
		return 0, err
	}
	c.logger.Infof("proposal %v created, window [%v, %v], options %v, asset %v", id, start.Unix(), end.Unix(), options, asset)
	return id, nil
}

func (c *Contract) GetProposal(id uint64) (*Proposal, error) {
	c.lock.Lock("GetProposal")
	defer c.lock.Unlock()
	return c.store.Get(id)
}

func (c *Contract) ProposalCount() uint64 {
	c.lock.Lock("ProposalCount")
	defer c.lock.Unlock()
	return c.store.Count()
}
