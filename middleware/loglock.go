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

package middleware

import (
	"sync"
	"time"

	"github.com/taschain/tasvote/taslog"
)

const (
	waitLimit = 50 * time.Millisecond
	holdLimit = 200 * time.Millisecond
)

// Loglock is a mutex that reports acquisitions waiting or holding longer than the limits.
type Loglock struct {
	lock   sync.Mutex
	title  string
	logger taslog.Logger

	// set under lock
	begin time.Time
	msg   string
}

// NewLoglock creates a lock reporting to logger, a nil logger disables reporting.
func NewLoglock(title string, logger taslog.Logger) *Loglock {
	return &Loglock{
		title:  title,
		logger: logger,
	}
}

func (lock *Loglock) Lock(msg string) {
	begin := time.Now()
	lock.lock.Lock()
	lock.begin = time.Now()
	lock.msg = msg

	if wait := lock.begin.Sub(begin); wait > waitLimit && lock.logger != nil {
		lock.logger.Warnf("lock %v: %v waited %v", lock.title, msg, wait)
	}
}

func (lock *Loglock) Unlock() {
	held := time.Since(lock.begin)
	msg := lock.msg
	lock.lock.Unlock()

	if held > holdLimit && lock.logger != nil {
		lock.logger.Warnf("lock %v: %v held %v", lock.title, msg, held)
	}
}
