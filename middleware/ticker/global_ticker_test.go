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

package ticker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodicRoutine(t *testing.T) {
	gt := NewGlobalTickerWithInterval("test", 5*time.Millisecond)
	defer gt.Close()

	var cnt int32
	gt.RegisterPeriodicRoutine("count", func() bool {
		atomic.AddInt32(&cnt, 1)
		return true
	}, 1)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&cnt), "stopped routine must not run")

	gt.StartTickerRoutine("count", true)
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&cnt) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, atomic.LoadInt32(&cnt) >= 2)

	gt.StopTickerRoutine("count")
	time.Sleep(20 * time.Millisecond)
	stopped := atomic.LoadInt32(&cnt)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&cnt))
}

func TestOneTimeRoutine(t *testing.T) {
	gt := NewGlobalTickerWithInterval("test", 5*time.Millisecond)
	defer gt.Close()

	done := make(chan struct{}, 2)
	gt.RegisterOneTimeRoutine("once", func() bool {
		done <- struct{}{}
		return true
	}, 1)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("one time routine not triggered")
	}
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, done, 0)
	assert.Nil(t, gt.getRoutine("once"))
}
