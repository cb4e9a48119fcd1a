package opmon

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/gwparam/paramstore/engine/gwlog"
)

var (
	operationAllocPool = sync.Pool{
		New: func() interface{} {
			return &Operation{}
		},
	}

	monitor = newMonitor()
)

// OpStats is the aggregated timing of one operation name
type OpStats struct {
	Name          string
	Count         uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
}

// Avg returns the average duration
func (s OpStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Count)
}

type _Monitor struct {
	sync.Mutex
	opInfos map[string]*OpStats
}

func newMonitor() *_Monitor {
	return &_Monitor{
		opInfos: map[string]*OpStats{},
	}
}

func (monitor *_Monitor) record(opname string, duration time.Duration) {
	monitor.Lock()
	info := monitor.opInfos[opname]
	if info == nil {
		info = &OpStats{Name: opname}
		monitor.opInfos[opname] = info
	}
	info.Count += 1
	info.TotalDuration += duration
	if duration > info.MaxDuration {
		info.MaxDuration = duration
	}
	monitor.Unlock()
}

// Collect returns the stats recorded since the last Collect, sorted by name, and resets them
func Collect() []OpStats {
	monitor.Lock()
	opInfos := monitor.opInfos
	monitor.opInfos = map[string]*OpStats{}
	monitor.Unlock()

	stats := make([]OpStats, 0, len(opInfos))
	for _, info := range opInfos {
		stats = append(stats, *info)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Dump writes the collected stats as a table
func Dump(w io.Writer) {
	fmt.Fprint(w, "=====================================================================================\n")
	for _, s := range Collect() {
		fmt.Fprintf(w, "%-30sx%-10d AVG %-10s MAX %-10s\n", s.Name, s.Count, s.Avg(), s.MaxDuration)
	}
}

// Operation is the type of operation to be monitored
type Operation struct {
	name      string
	startTime time.Time
}

// StartOperation creates a new operation
func StartOperation(operationName string) *Operation {
	op := operationAllocPool.Get().(*Operation)
	op.name = operationName
	op.startTime = time.Now()
	return op
}

// Finish records the duration of the operation and warns when it exceeds warnThreshold.
// The operation must not be used afterwards.
func (op *Operation) Finish(warnThreshold time.Duration) time.Duration {
	takeTime := time.Since(op.startTime)
	monitor.record(op.name, takeTime)
	if takeTime >= warnThreshold {
		gwlog.Warnf("opmon: operation %s takes %s > %s", op.name, takeTime, warnThreshold)
	}
	operationAllocPool.Put(op)
	return takeTime
}
