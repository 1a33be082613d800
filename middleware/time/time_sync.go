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

package time

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/taschain/tasvote/common"
	"github.com/taschain/tasvote/middleware/ticker"
)

// TimeStamp is a point in time in unix seconds, the unit proposal windows are expressed in
type TimeStamp int64

func Int64ToTimeStamp(sec int64) TimeStamp {
	return TimeStamp(sec)
}

func TimeToTimeStamp(t time.Time) TimeStamp {
	return TimeStamp(t.Unix())
}

func (ts TimeStamp) Bytes() []byte {
	return common.UInt64ToByte(uint64(ts))
}

func (ts TimeStamp) UTC() time.Time {
	return time.Unix(ts.Unix(), 0).UTC()
}

func (ts TimeStamp) Local() time.Time {
	return time.Unix(ts.Unix(), 0).Local()
}

func (ts TimeStamp) Unix() int64 {
	return int64(ts)
}

func (ts TimeStamp) After(t TimeStamp) bool {
	return ts > t
}

func (ts TimeStamp) Before(t TimeStamp) bool {
	return ts < t
}

func (ts TimeStamp) Since(t TimeStamp) int64 {
	return int64(ts - t)
}

func (ts TimeStamp) Add(sec int64) TimeStamp {
	return ts + Int64ToTimeStamp(sec)
}

func (ts TimeStamp) String() string {
	return ts.UTC().Format(time.RFC3339)
}

// TimeService is a time service, it return utc time
// All input time will convert to utc time
type TimeService interface {
	Now() TimeStamp
	Since(t TimeStamp) int64
	NowAfter(t TimeStamp) bool
}

var DefaultNTPServers = []string{"ntp.aliyun.com", "ntp1.aliyun.com", "ntp2.aliyun.com", "ntp3.aliyun.com", "ntp4.aliyun.com", "ntp5.aliyun.com", "ntp6.aliyun.com", "ntp7.aliyun.com"}

const timeSyncRoutine = "time_sync"

// TimeSync is the local clock corrected by the offset reported by an ntp server, refreshed every minute
type TimeSync struct {
	currentOffset int64 // time.Duration
	servers       []string
	ticker        *ticker.GlobalTicker
}

var TSInstance TimeService = SystemClock{}

func InitTimeSync() {
	ts := NewTimeSync(DefaultNTPServers)
	ts.Start()
	TSInstance = ts
}

func NewTimeSync(servers []string) *TimeSync {
	return &TimeSync{
		servers: servers,
	}
}

// Start syncs once synchronously, then periodically in background
func (ts *TimeSync) Start() {
	ts.ticker = ticker.NewGlobalTicker(timeSyncRoutine)
	ts.ticker.RegisterPeriodicRoutine(timeSyncRoutine, ts.syncRoutine, 60)
	ts.ticker.StartTickerRoutine(timeSyncRoutine, false)
	ts.syncRoutine()
}

func (ts *TimeSync) Stop() {
	if ts.ticker != nil {
		ts.ticker.Close()
	}
}

func (ts *TimeSync) syncRoutine() bool {
	if len(ts.servers) == 0 {
		return false
	}
	server := ts.servers[rand.Intn(len(ts.servers))]
	rsp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: 2 * time.Second})
	if err != nil {
		if common.DefaultLogger != nil {
			common.DefaultLogger.Warnf("time sync from %v err: %v", server, err)
		}
		if ts.ticker != nil {
			ts.ticker.StartTickerRoutine(timeSyncRoutine, true)
		}
		return false
	}
	atomic.StoreInt64(&ts.currentOffset, int64(rsp.ClockOffset))
	if common.DefaultLogger != nil {
		common.DefaultLogger.Infof("time offset from %v is %v", server, rsp.ClockOffset.String())
	}
	return true
}

func (ts *TimeSync) Offset() time.Duration {
	return time.Duration(atomic.LoadInt64(&ts.currentOffset))
}

func (ts *TimeSync) Now() TimeStamp {
	return TimeToTimeStamp(time.Now().Add(ts.Offset()).UTC())
}

func (ts *TimeSync) Since(t TimeStamp) int64 {
	return ts.Now().Since(t)
}

func (ts *TimeSync) NowAfter(t TimeStamp) bool {
	return ts.Now().After(t)
}

// SystemClock reads the local clock with no correction
type SystemClock struct{}

func (SystemClock) Now() TimeStamp {
	return TimeToTimeStamp(time.Now().UTC())
}

func (c SystemClock) Since(t TimeStamp) int64 {
	return c.Now().Since(t)
}

func (c SystemClock) NowAfter(t TimeStamp) bool {
	return c.Now().After(t)
}

// ManualClock only moves when told to
type ManualClock struct {
	lock sync.RWMutex
	now  TimeStamp
}

func NewManualClock(now TimeStamp) *ManualClock {
	return &ManualClock{now: now}
}

func (mc *ManualClock) Now() TimeStamp {
	mc.lock.RLock()
	defer mc.lock.RUnlock()
	return mc.now
}

func (mc *ManualClock) Set(now TimeStamp) {
	mc.lock.Lock()
	defer mc.lock.Unlock()
	mc.now = now
}

func (mc *ManualClock) Advance(sec int64) TimeStamp {
	mc.lock.Lock()
	defer mc.lock.Unlock()
	mc.now = mc.now.Add(sec)
	return mc.now
}

func (mc *ManualClock) Since(t TimeStamp) int64 {
	return mc.Now().Since(t)
}

func (mc *ManualClock) NowAfter(t TimeStamp) bool {
	return mc.Now().After(t)
}
