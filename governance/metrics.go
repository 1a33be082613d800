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
	"github.com/rcrowley/go-metrics"
)

type govMetrics struct {
	applied   metrics.Counter
	rejected  metrics.Counter
	tally     metrics.Counter
	unstake   metrics.Counter
	withdrawn metrics.Counter
	restored  metrics.Counter
	resent    metrics.Counter
	expired   metrics.Counter
}

func newGovMetrics(r metrics.Registry) *govMetrics {
	return &govMetrics{
		applied:   metrics.GetOrRegisterCounter("gov/vote/applied", r),
		rejected:  metrics.GetOrRegisterCounter("gov/vote/rejected", r),
		tally:     metrics.GetOrRegisterCounter("gov/tally", r),
		unstake:   metrics.GetOrRegisterCounter("gov/unstake", r),
		withdrawn: metrics.GetOrRegisterCounter("gov/unstake/withdrawn", r),
		restored:  metrics.GetOrRegisterCounter("gov/unstake/restored", r),
		resent:    metrics.GetOrRegisterCounter("gov/unstake/resent", r),
		expired:   metrics.GetOrRegisterCounter("gov/vote/expired", r),
	}
}
