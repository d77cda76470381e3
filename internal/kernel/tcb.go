package kernel

// Status is a bitmask over the conditions a task can be in. Ready is
// encoded as all bits clear.
type Status uint16

const (
	StatReady Status = 0

	WaitingSem   Status = 1 << 0
	WaitingMbox  Status = 1 << 1
	WaitingQ     Status = 1 << 2
	WaitingMutex Status = 1 << 3
	WaitingFlag  Status = 1 << 4
	Suspended    Status = 1 << 5
)

// TCB is the Task Control Block: one per task. StkPtr is opaque to the
// core; it is written only by the port's context-switch code.
type TCB struct {
	StkPtr uintptr

	Prio int
	bits prioBits

	Status Status
	Delay  uint32 // ticks remaining; 0 = not delayed

	EventPtr *ECB // event this task is waiting on, or nil
	PendMsg  any  // pending message slot (direct hand-off from a post)

	prev, next *TCB // all-tasks doubly-linked list
	nextFree   *TCB // free-list link, reused only while off the all-tasks list

	Ext       any
	StkBottom uintptr
	StkSize   uint32
	ID        uint32
	Opt       TaskOpt
	DelReq    bool

	allocated bool // false while on the free list
}

// Ready reports whether the task is currently runnable (no status bits
// set).
func (t *TCB) Ready() bool { return t.Status == StatReady }

// tcbPool is the fixed-size arena TCBs are drawn from. prioTbl is indexed
// directly by priority value (at most one TCB per priority), so it must be
// sized by the priority range (numPrios == cfg.LowestPrio+1), independent
// of maxTasks, which only bounds how many TCBs the free-list arena holds.
type tcbPool struct {
	tasks   []TCB
	free    *TCB
	all     *TCB // head of the all-tasks doubly-linked list
	prioTbl []*TCB
}

func newTCBPool(maxTasks, numPrios int) *tcbPool {
	p := &tcbPool{
		tasks:   make([]TCB, maxTasks),
		prioTbl: make([]*TCB, numPrios),
	}
	for i := range p.tasks {
		p.tasks[i].nextFree = p.free
		p.free = &p.tasks[i]
	}
	return p
}

func (p *tcbPool) popFree() *TCB {
	if p.free == nil {
		return nil
	}
	t := p.free
	p.free = t.nextFree
	t.nextFree = nil
	t.allocated = true
	return t
}

func (p *tcbPool) pushFree(t *TCB) {
	t.allocated = false
	t.nextFree = p.free
	p.free = t
}

func (p *tcbPool) linkAllTasks(t *TCB) {
	t.next = p.all
	t.prev = nil
	if p.all != nil {
		p.all.prev = t
	}
	p.all = t
}

func (p *tcbPool) unlinkAllTasks(t *TCB) {
	if t.prev != nil {
		t.prev.next = t.next
	} else {
		p.all = t.next
	}
	if t.next != nil {
		t.next.prev = t.prev
	}
	t.prev, t.next = nil, nil
}

// TCBInit draws a TCB from the free pool, populates it, registers it under
// PrioTbl[prio], links it into the all-tasks list, and marks it ready.
// The only failure is ErrNoMoreTCB; priority uniqueness must already be
// validated by the caller.
func (k *Kernel) TCBInit(prio int, stkPtr uintptr, stkBottom uintptr, id uint32, stkSize uint32, ext any, opt TaskOpt) (*TCB, Err) {
	k.enterCritical()
	defer k.exitCritical()

	t := k.tcbs.popFree()
	if t == nil {
		return nil, ErrNoMoreTCB
	}

	t.StkPtr = stkPtr
	t.Prio = prio
	t.bits = computePrioBits(prio)
	t.Status = StatReady
	t.Delay = 0
	t.EventPtr = nil
	t.PendMsg = nil
	t.Ext = ext
	t.StkBottom = stkBottom
	t.StkSize = stkSize
	t.ID = id
	t.Opt = opt
	t.DelReq = false

	k.port.TCBInitHook(t)

	k.tcbs.prioTbl[prio] = t
	k.tcbs.linkAllTasks(t)
	k.readyInsert(t)

	return t, ErrNone
}

func (k *Kernel) readyInsert(t *TCB) {
	k.ready.insert(t.bits)
}

func (k *Kernel) readyRemove(t *TCB) {
	k.ready.remove(t.bits)
}
