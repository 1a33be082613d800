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

package governance

import (
	"sync"

	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/storage/tasdb"
	"github.com/taschain/tasvote/taslog"
	"github.com/vmihailenco/msgpack"
)

const defaultProposalCacheSize = 128

var (
	proposalPrefix   = []byte("proposal")
	appliedPrefix    = []byte("applied")
	withdrawalPrefix = []byte("withdrawal")
	countKey         = []byte("meta/count")
)

// ProposalStore persists proposals, the proposal counter, applied request ids
// and in-flight refund transfers in one keyspace, so a single batch commits an
// operation atomically.
type ProposalStore struct {
	db    tasdb.Database
	cache *lru.Cache

	lock  sync.RWMutex
	count uint64
}

func NewProposalStore(db tasdb.Database, cacheSize int) (*ProposalStore, error) {
	if cacheSize <= 0 {
		cacheSize = defaultProposalCacheSize
	}
	s := &ProposalStore{
		db:    db,
		cache: common.MustNewLRUCache(cacheSize),
	}
	data, err := db.Get(countKey)
	switch {
	case err == tasdb.ErrNotFound:
	case err != nil:
		return nil, errors.Wrap(err, "read proposal count")
	default:
		s.count = common.ByteToUInt64(data)
	}
	return s, nil
}

func proposalKey(id uint64) []byte {
	return append(common.CopyBytes(proposalPrefix), common.UInt64ToByte(id)...)
}

func appliedKey(requestID string) []byte {
	return append(common.CopyBytes(appliedPrefix), requestID...)
}

func withdrawalKey(transferID string) []byte {
	return append(common.CopyBytes(withdrawalPrefix), transferID...)
}

// Count returns the number of proposals created, which is also the next id.
func (s *ProposalStore) Count() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.count
}

// Get returns a private copy of the proposal, callers may modify it freely.
func (s *ProposalStore) Get(id uint64) (*Proposal, error) {
	if v, ok := s.cache.Get(id); ok {
		return v.(*Proposal).Clone(), nil
	}
	data, err := s.db.Get(proposalKey(id))
	if err == tasdb.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "proposal %v", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read proposal %v", id)
	}
	p, err := decodeProposal(data)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, p)
	return p.Clone(), nil
}

func (s *ProposalStore) IsApplied(requestID string) (bool, error) {
	ok, err := s.db.Has(appliedKey(requestID))
	if err != nil {
		return false, errors.Wrapf(err, "read applied request %v", requestID)
	}
	return ok, nil
}

func (s *ProposalStore) withdrawal(transferID string) (*withdrawalRecord, error) {
	data, err := s.db.Get(withdrawalKey(transferID))
	if err == tasdb.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "transfer %v", transferID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read transfer %v", transferID)
	}
	var rec withdrawalRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "decode transfer %v", transferID)
	}
	return &rec, nil
}

// storeTx collects the writes of one operation.
type storeTx struct {
	store     *ProposalStore
	batch     tasdb.Batch
	proposals []*Proposal
	count     *uint64
}

func (s *ProposalStore) begin() *storeTx {
	return &storeTx{store: s, batch: s.db.NewBatch()}
}

func (tx *storeTx) putProposal(p *Proposal) error {
	data, err := encodeProposal(p)
	if err != nil {
		return errors.Wrapf(err, "encode proposal %v", p.ID)
	}
	if err := tx.batch.Put(proposalKey(p.ID), data); err != nil {
		return err
	}
	tx.proposals = append(tx.proposals, p)
	return nil
}

func (tx *storeTx) setCount(n uint64) error {
	if err := tx.batch.Put(countKey, common.UInt64ToByte(n)); err != nil {
		return err
	}
	tx.count = &n
	return nil
}

func (tx *storeTx) markApplied(requestID string) error {
	return tx.batch.Put(appliedKey(requestID), []byte{1})
}

func (tx *storeTx) putWithdrawal(transferID string, rec *withdrawalRecord) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return err
	}
	return tx.batch.Put(withdrawalKey(transferID), data)
}

func (tx *storeTx) deleteWithdrawal(transferID string) error {
	return tx.batch.Delete(withdrawalKey(transferID))
}

// commit writes the batch; the cache and the counter change only once the write succeeded.
func (tx *storeTx) commit() error {
	slog := taslog.NewSlowLog("commit", 0.5)
	defer slog.Log("proposals %v", len(tx.proposals))

	slog.AddStage("write")
	err := tx.batch.Write()
	slog.EndStage()
	if err != nil {
		return errors.Wrap(err, "write batch")
	}

	s := tx.store
	for _, p := range tx.proposals {
		s.cache.Add(p.ID, p.Clone())
	}
	if tx.count != nil {
		s.lock.Lock()
		s.count = *tx.count
		s.lock.Unlock()
	}
	return nil
}
