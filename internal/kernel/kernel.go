package kernel

// Kernel holds all scheduler and synchronization state, modeled as a
// struct instead of package-level globals so a test harness can
// instantiate a fresh one per test. Every field below is mutated only
// under a critical section (see critical.go).
type Kernel struct {
	cfg  Config
	port Port

	ready bitmapIndex // ReadyGrp/ReadyTbl
	tcbs  *tcbPool

	events *ecbPool
	queues *qcbPool
	mem    *memPool

	running      bool
	intNesting   uint8
	lockNesting  uint8

	prioCur    int
	prioHighRdy int
	tcbCur     *TCB
	tcbHighRdy *TCB

	ctxSwCtr uint32
	time     uint32 // 32-bit tick counter, wraps

	idleCtr    uint32
	idleCtrMax uint32
	idleCtrRun uint32
	cpuUsage   uint8
	statRdy    bool
}

// New builds a Kernel bound to port and immediately creates the idle task
// (and, if cfg.StatEnabled, the statistics task) at their reserved
// priorities, corresponding to OSInit plus OSTaskCreate(idle) in the
// original uC/OS-II core.
func New(cfg Config, port Port) *Kernel {
	k := &Kernel{
		cfg:    cfg,
		port:   port,
		tcbs:   newTCBPool(cfg.MaxTasks, cfg.LowestPrio+1),
		events: newECBPool(cfg.MaxEvents),
		queues: newQCBPool(cfg.MaxQs),
		mem:    newMemPool(cfg.MaxMemParts),
	}

	port.InitHookBegin()

	idleStk := port.StkInit(idleTaskBody(k), nil, 0, 0)
	idle, errc := k.TCBInit(cfg.IdlePrio(), idleStk, 0, 0, uint32(cfg.TaskIdleStkSize), nil, 0)
	if errc != ErrNone {
		panic("kernel: no more TCBs for idle task")
	}
	port.TaskCreateHook(idle)

	if cfg.StatEnabled {
		statStk := port.StkInit(statTaskBody(k), nil, 0, 0)
		stat, errc := k.TCBInit(cfg.StatPrio(), statStk, 0, 0, uint32(cfg.TaskStatStkSize), nil, 0)
		if errc != ErrNone {
			panic("kernel: no more TCBs for stat task")
		}
		port.TaskCreateHook(stat)
	}

	port.InitHookEnd()

	return k
}

// Time returns the current tick counter.
func (k *Kernel) Time() uint32 {
	k.enterCritical()
	defer k.exitCritical()
	return k.time
}

// CtxSwCtr returns the number of context switches performed so far.
func (k *Kernel) CtxSwCtr() uint32 {
	k.enterCritical()
	defer k.exitCritical()
	return k.ctxSwCtr
}

// Running reports whether Start has been called.
func (k *Kernel) Running() bool {
	k.enterCritical()
	defer k.exitCritical()
	return k.running
}

// CPUUsage returns the last computed percentage (0-100), valid only when
// the statistics task is enabled and has completed its first sampling
// window.
func (k *Kernel) CPUUsage() uint8 {
	k.enterCritical()
	defer k.exitCritical()
	return k.cpuUsage
}

// CurTask returns the currently-running TCB (valid once Running).
func (k *Kernel) CurTask() *TCB {
	k.enterCritical()
	defer k.exitCritical()
	return k.tcbCur
}

// TaskByPrio returns the TCB registered at prio, or nil.
func (k *Kernel) TaskByPrio(prio int) *TCB {
	k.enterCritical()
	defer k.exitCritical()
	return k.tcbs.prioTbl[prio]
}

// ReadyGroup and ReadyTable are OSRdyGrp/OSRdyTbl's read-only snapshot,
// exposed for host-side tools that render the ready set.
func (k *Kernel) ReadyGroup() uint8 {
	k.enterCritical()
	defer k.exitCritical()
	return k.ready.grp
}

func (k *Kernel) ReadyTable() [8]uint8 {
	k.enterCritical()
	defer k.exitCritical()
	return k.ready.tbl
}

// Tasks returns every registered TCB in priority order, for tools that
// print a task table.
func (k *Kernel) Tasks() []*TCB {
	k.enterCritical()
	defer k.exitCritical()
	tasks := make([]*TCB, 0, len(k.tcbs.prioTbl))
	for _, t := range k.tcbs.prioTbl {
		if t != nil {
			tasks = append(tasks, t)
		}
	}
	return tasks
}
