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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taschain/tasvote/common"
)

func newTestConf(t *testing.T, content string) (common.ConfManager, func()) {
	dir, err := ioutil.TempDir("", "tasvote_conf")
	require.NoError(t, err)
	path := filepath.Join(dir, "tasvote.ini")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return common.NewConfINIManager(path), func() { os.RemoveAll(dir) }
}

func TestLoadConfigDefaults(t *testing.T) {
	cm, clean := newTestConf(t, "")
	defer clean()

	cfg, err := LoadConfig(cm)
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, defaultProposalCacheSize, cfg.ProposalCache)
	assert.Equal(t, DefaultLoggerName, cfg.LoggerName)
	assert.Equal(t, common.Address(DefaultContract), cfg.Contract)
	assert.Equal(t, common.Address(DefaultAsset), cfg.Asset)
}

func TestLoadConfig(t *testing.T) {
	cm, clean := newTestConf(t, "[gov]\ndatabase=d_test\nproposal_cache=8\ncontract=Gov.TAS\n[ledger]\nasset=coin.tas\n")
	defer clean()

	cfg, err := LoadConfig(cm)
	require.NoError(t, err)
	assert.Equal(t, "d_test", cfg.Database)
	assert.Equal(t, 8, cfg.ProposalCache)
	assert.Equal(t, common.Address("gov.tas"), cfg.Contract)
	assert.Equal(t, common.Address("coin.tas"), cfg.Asset)

	cm.SetString(LedgerConfSection, "asset", "bad asset!")
	_, err = LoadConfig(cm)
	assert.Error(t, err)
}
