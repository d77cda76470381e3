package kernel

// EventType tags what an ECB currently represents. Mutex, Flag and Mbox
// are enumerated for fidelity with the uC/OS-II original but
// this core only ever creates Sem and Q instances; event flags, mailboxes
// and mutexes are out of scope.
type EventType uint8

const (
	EventUnused EventType = iota
	EventSem
	EventQ
	EventMbox
	EventMutex
	EventFlag
)

// ECB is the Event Control Block shared by semaphores and queues: a
// bitmap wait-list plus a type-tagged payload. Ptr holds a *qcb while
// Type == EventQ and is nil otherwise; the free-list link is the separate
// nextFree field.
type ECB struct {
	Type  EventType
	Count uint16 // semaphore value
	Ptr   any    // *qcb, or nil

	wait bitmapIndex // EventGrp/EventTbl

	nextFree *ECB
}

type ecbPool struct {
	ecbs []ECB
	free *ECB
}

func newECBPool(n int) *ecbPool {
	p := &ecbPool{ecbs: make([]ECB, n)}
	for i := range p.ecbs {
		p.ecbs[i].nextFree = p.free
		p.free = &p.ecbs[i]
	}
	return p
}

func (p *ecbPool) popFree() *ECB {
	if p.free == nil {
		return nil
	}
	e := p.free
	p.free = e.nextFree
	e.nextFree = nil
	return e
}

func (p *ecbPool) pushFree(e *ECB) {
	e.Type = EventUnused
	e.Count = 0
	e.Ptr = nil
	e.wait = bitmapIndex{}
	e.nextFree = p.free
	p.free = e
}

// EventTaskWait moves the current task from the ready set onto e's
// wait-list. The caller is responsible for setting the task's status bit
// for the event type and its delay, and for invoking the scheduler
// afterwards.
func (k *Kernel) EventTaskWait(e *ECB) {
	t := k.tcbCur
	t.EventPtr = e
	k.readyRemove(t)
	e.wait.insert(t.bits)
}

// EventTaskRdy wakes the highest-priority waiter on e: removes it from
// e's wait-list, delivers msg into its pending-message slot, clears the
// given status bit, and — if that was the task's last blocking reason —
// inserts it into the ready set. Returns the waiter's priority.
func (k *Kernel) EventTaskRdy(e *ECB, msg any, statMask Status) int {
	prio := e.wait.highest()
	t := k.tcbs.prioTbl[prio]

	e.wait.remove(t.bits)

	t.Delay = 0
	t.EventPtr = nil
	t.PendMsg = msg
	t.Status &^= statMask
	if t.Status == StatReady {
		k.readyInsert(t)
	}
	return prio
}

// EventTO finishes a timed-out wait: removes the current task from e's
// wait-list. The tick engine already readied the task in the ready
// bitmap before this runs; only the ECB side is cleaned up here.
func (k *Kernel) EventTO(e *ECB) {
	t := k.tcbCur
	e.wait.remove(t.bits)
	t.Status = StatReady
	t.EventPtr = nil
}
