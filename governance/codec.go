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
	"sort"

	"github.com/pkg/errors"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/middleware/time"
	"github.com/vmihailenco/msgpack"
)

type optionRecord struct {
	Name  string `msgpack:"n"`
	Votes []byte `msgpack:"v"`
}

type voterRecord struct {
	Voter      string `msgpack:"a"`
	Amount     []byte `msgpack:"v"`
	State      uint8  `msgpack:"s"`
	TransferID string `msgpack:"t,omitempty"`
}

type proposalRecord struct {
	Version     int             `msgpack:"ver"`
	ID          uint64          `msgpack:"id"`
	Description string          `msgpack:"d"`
	StartTime   int64           `msgpack:"st"`
	EndTime     int64           `msgpack:"et"`
	Options     []*optionRecord `msgpack:"o"`
	Voters      []*voterRecord  `msgpack:"vs"`
	Withdrawn   []byte          `msgpack:"w"`
	Winner      *string         `msgpack:"win"`
	Tallied     bool            `msgpack:"tl"`
	Asset       string          `msgpack:"as"`
}

// withdrawalRecord locates the voter entry a refund transfer belongs to.
type withdrawalRecord struct {
	ProposalID uint64 `msgpack:"p"`
	Voter      string `msgpack:"v"`
}

func encodeProposal(p *Proposal) ([]byte, error) {
	rec := &proposalRecord{
		Version:     common.RecordVersion,
		ID:          p.ID,
		Description: p.Description,
		StartTime:   p.StartTime.Unix(),
		EndTime:     p.EndTime.Unix(),
		Options:     make([]*optionRecord, 0, len(p.Options)),
		Voters:      make([]*voterRecord, 0, len(p.VoterStakes)),
		Withdrawn:   common.AmountToBytes(p.Withdrawn),
		Winner:      p.WinningOption,
		Tallied:     p.Tallied,
		Asset:       p.AssetContract.String(),
	}
	for _, o := range p.Options {
		rec.Options = append(rec.Options, &optionRecord{Name: o.Name, Votes: common.AmountToBytes(o.Votes)})
	}
	for addr, s := range p.VoterStakes {
		rec.Voters = append(rec.Voters, &voterRecord{
			Voter:      addr.String(),
			Amount:     common.AmountToBytes(s.Amount),
			State:      uint8(s.State),
			TransferID: s.TransferID,
		})
	}
	// map order is random, keep the encoding deterministic
	sort.Slice(rec.Voters, func(i, j int) bool {
		return rec.Voters[i].Voter < rec.Voters[j].Voter
	})
	return msgpack.Marshal(rec)
}

func decodeProposal(data []byte) (*Proposal, error) {
	var rec proposalRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "decode proposal")
	}
	if rec.Version != common.RecordVersion {
		return nil, errors.Errorf("unsupported proposal record version %v", rec.Version)
	}
	p := &Proposal{
		ID:            rec.ID,
		Description:   rec.Description,
		StartTime:     time.Int64ToTimeStamp(rec.StartTime),
		EndTime:       time.Int64ToTimeStamp(rec.EndTime),
		Options:       make([]*OptionTally, 0, len(rec.Options)),
		VoterStakes:   make(map[common.Address]*VoterStake, len(rec.Voters)),
		Withdrawn:     common.BytesToAmount(rec.Withdrawn),
		WinningOption: rec.Winner,
		Tallied:       rec.Tallied,
		AssetContract: common.Address(rec.Asset),
	}
	for _, o := range rec.Options {
		p.Options = append(p.Options, &OptionTally{Name: o.Name, Votes: common.BytesToAmount(o.Votes)})
	}
	for _, v := range rec.Voters {
		p.VoterStakes[common.Address(v.Voter)] = &VoterStake{
			Amount:     common.BytesToAmount(v.Amount),
			State:      StakeState(v.State),
			TransferID: v.TransferID,
		}
	}
	return p, nil
}
