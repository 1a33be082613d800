package taslog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cihub/seelog"
	"golang.org/x/crypto/sha3"
)

var logManager = map[string]seelog.LoggerInterface{}

var lock sync.Mutex

func GetLogger(config string) Logger {
	if config == `` {
		config = DefaultConfig
	}
	key := getKey(config)

	lock.Lock()
	defer lock.Unlock()

	r := logManager[key]
	if r == nil {
		r = newLoggerByConfig(config)
		logManager[key] = r
	}
	return &defaultLogger{logger: r}
}

// GetLoggerByIndex fills the LOG_INDEX placeholder of config, so several instances in one process write separate files
func GetLoggerByIndex(config string, index string) Logger {
	return GetLogger(strings.Replace(config, indexPlaceholder, index, 1))
}

func GetLoggerByName(name string) Logger {
	if name == "" {
		return GetLogger(DefaultConfig)
	}
	key := getKey(name)

	lock.Lock()
	defer lock.Unlock()

	r := logManager[key]
	if r == nil {
		fileName := name + ".log"
		config := strings.Replace(DefaultConfig, "default.log", fileName, 1)
		r = newLoggerByConfig(config)
		logManager[key] = r
	}
	return &defaultLogger{logger: r}
}

func getKey(s string) string {
	hash := sha3.Sum256([]byte(s))
	return string(hash[:])
}

func newLoggerByConfig(config string) seelog.LoggerInterface {
	l, err := seelog.LoggerFromConfigAsBytes([]byte(config))
	if err != nil {
		fmt.Printf("Get logger error:%s\n", err.Error())
		panic(err)
	}
	return l
}

func Close() {
	lock.Lock()
	defer lock.Unlock()
	for key, logger := range logManager {
		logger.Flush()
		logger.Close()
		delete(logManager, key)
	}
}
