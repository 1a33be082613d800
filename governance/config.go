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
	"github.com/pkg/errors"
	"github.com/taschain/tasvote/common"
)

const (
	ConfSection       = "gov"
	LedgerConfSection = "ledger"

	DefaultDatabase   = "d_tasvote"
	DefaultLoggerName = "gov"
	DefaultContract   = "vote.tas"
	DefaultAsset      = "token.tas"
)

// Config is the [gov] and [ledger] part of the ini file.
type Config struct {
	Database      string
	ProposalCache int
	LoggerName    string
	Contract      common.Address
	Asset         common.Address
}

func LoadConfig(cm common.ConfManager) (*Config, error) {
	sec := cm.GetSectionManager(ConfSection)
	cfg := &Config{
		Database:      sec.GetString("database", DefaultDatabase),
		ProposalCache: sec.GetInt("proposal_cache", defaultProposalCacheSize),
		LoggerName:    sec.GetString("logger_name", DefaultLoggerName),
	}

	var err error
	if cfg.Contract, err = common.StringToAddress(sec.GetString("contract", DefaultContract)); err != nil {
		return nil, errors.Wrap(err, "gov.contract")
	}
	if cfg.Asset, err = common.StringToAddress(cm.GetString(LedgerConfSection, "asset", DefaultAsset)); err != nil {
		return nil, errors.Wrap(err, "ledger.asset")
	}
	if cfg.ProposalCache <= 0 {
		return nil, errors.Errorf("gov.proposal_cache must be positive, got %v", cfg.ProposalCache)
	}
	return cfg, nil
}
