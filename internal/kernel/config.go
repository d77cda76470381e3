package kernel

// Config carries the compile-time toggles a port/build selects once,
// before kernel.New. There is no dynamic reconfiguration.
type Config struct {
	MaxTasks        int // size of the TCB pool; the priority range is set by LowestPrio, not by this
	MaxEvents       int // size of the ECB pool (semaphores + queues share it)
	MaxQs           int // size of the QCB pool
	MaxMemParts     int // size of the MCB pool
	LowestPrio      int // PMAX: highest valid (numerically largest) priority
	TicksPerSec     int // used by the stat task's one-second sampling window
	TaskIdleStkSize int
	TaskStatStkSize int

	// StatEnabled toggles creation of the optional CPU-usage task at
	// LowestPrio-1 (STAT_PRIO). When false, IdleCtrMax/CPUUsage are never
	// populated.
	StatEnabled bool
}

// IdlePrio is PMAX: the idle task's priority, always the lowest in the
// system.
func (c Config) IdlePrio() int { return c.LowestPrio }

// StatPrio is PMAX-1: the optional statistics task's priority.
func (c Config) StatPrio() int { return c.LowestPrio - 1 }

// DefaultConfig mirrors typical uC/OS-II app.h values scaled down for a
// host build: 63 TCBs over priorities 0..62, a handful of sync objects,
// 100 ticks/sec.
func DefaultConfig() Config {
	return Config{
		MaxTasks:        63,
		MaxEvents:       32,
		MaxQs:           16,
		MaxMemParts:     8,
		LowestPrio:      62,
		TicksPerSec:     100,
		TaskIdleStkSize: 256,
		TaskStatStkSize: 256,
		StatEnabled:     true,
	}
}

// DelOpt selects how a Delete call on a semaphore or queue behaves when
// the object still has waiters.
type DelOpt int

const (
	// DelOnlyIfIdle fails the delete if any task is waiting.
	DelOnlyIfIdle DelOpt = iota
	// DelAlways wakes every waiter before returning the object to its free
	// list; each woken pend returns ErrNone (a queue waiter gets a nil
	// message).
	DelAlways
)

// PostOpt controls QPostOpt's insertion end and fan-out.
type PostOpt struct {
	Front     bool // LIFO insert instead of FIFO, when no waiter is present
	Broadcast bool // wake every current waiter instead of just the highest-priority one
}
