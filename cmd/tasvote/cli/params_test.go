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
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/governance"
	"github.com/taschain/tasvote/middleware/notify"
	"gopkg.in/alecthomas/kingpin.v2"
)

func TestParams(t *testing.T) {
	app := kingpin.New("test", "")
	cmd := app.Command("vote", "")
	amount := CoinParam(cmd.Flag("amount", "").Required())
	from := AddressParam(cmd.Flag("from", "").Required())
	options := OptionListParam(cmd.Flag("option", ""))

	_, err := app.Parse([]string{"vote", "--amount", "2kra", "--from", "Alice.TAS", "--option", "a,b", "--option", "c"})
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Cmp(big.NewInt(2000)))
	assert.Equal(t, common.Address("alice.tas"), *from)
	assert.Equal(t, []string{"a", "b", "c"}, *options)
}

func TestParamsRejected(t *testing.T) {
	cases := [][]string{
		{"vote", "--amount", "12xyz", "--from", "alice.tas"},
		{"vote", "--amount", "1", "--from", "bad account"},
		{"vote", "--amount", "1", "--from", "alice.tas", "--option", "a,,b"},
		{"vote", "--from", "alice.tas"},
	}
	for _, args := range cases {
		app := kingpin.New("test", "")
		cmd := app.Command("vote", "")
		CoinParam(cmd.Flag("amount", "").Required())
		AddressParam(cmd.Flag("from", "").Required())
		OptionListParam(cmd.Flag("option", ""))

		_, err := app.Parse(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestFormatEvent(t *testing.T) {
	winner := "A"
	s := formatEvent(&governance.EventMessage{
		Topic:      governance.TopicProposalTallied,
		ProposalID: 3,
		Winner:     &winner,
	})
	assert.Equal(t, "event proposal.tallied proposal=3 winner=A", s)

	s = formatEvent(&governance.EventMessage{
		Topic:  governance.TopicVoteRejected,
		Voter:  "v1.tas",
		Option: "B",
		Amount: big.NewInt(5),
		Err:    errors.New("voting closed"),
	})
	assert.Equal(t, `event vote.rejected proposal=0 voter=v1.tas option=B amount=5 err="voting closed"`, s)
}

func TestPrintEventsInOrder(t *testing.T) {
	tv := NewTasVote()
	bus := notify.NewBus()
	bus.SubscribeAll(eventTopics, tv.onEvent)

	bus.Publish(&governance.EventMessage{Topic: governance.TopicStakeWithdrawing, ProposalID: 1, TransferID: "t1"})
	bus.Publish(&governance.EventMessage{Topic: governance.TopicStakeWithdrawn, ProposalID: 1, TransferID: "t1"})

	var buf bytes.Buffer
	tv.printEvents(&buf)
	assert.Equal(t, "event stake.withdrawing proposal=1 transfer=t1\nevent stake.withdrawn proposal=1 transfer=t1\n", buf.String())

	buf.Reset()
	tv.printEvents(&buf)
	assert.Empty(t, buf.String())
}
