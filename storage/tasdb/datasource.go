package tasdb

import (
	"github.com/taschain/tasvote/common"
)

/*
**  Creator: pxf
**  Date: 2019/3/18 上午10:21
**  Description:
 */

const (
	CONFIG_SEC     = "gov"
	DEFAULT_FILE   = "d_tasvote"
	defaultCache   = 128
	defaultHandler = 1024
)

// TasDataSource owns one leveldb instance shared by several prefixed databases
type TasDataSource struct {
	db *LDBDatabase
}

func NewDataSource(file string) (*TasDataSource, error) {
	db, err := getInstance(file)
	if err != nil {
		return nil, err
	}
	return &TasDataSource{db: db}, nil
}

func getInstance(file string) (*LDBDatabase, error) {
	if file == "" {
		file = DEFAULT_FILE
	}
	if common.GlobalConf == nil {
		return NewLDBDatabase(file, defaultCache, defaultHandler)
	}
	return NewLDBDatabase(file, common.GlobalConf.GetInt(CONFIG_SEC, "cache", defaultCache), common.GlobalConf.GetInt(CONFIG_SEC, "handler", defaultHandler))
}

func (ds *TasDataSource) NewPrefixDatabase(prefix string) (*PrefixedDatabase, error) {
	return &PrefixedDatabase{
		db:     ds.db,
		prefix: prefix,
	}, nil
}

func (ds *TasDataSource) Close() {
	ds.db.Close()
}
