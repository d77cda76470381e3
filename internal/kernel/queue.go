package kernel

// qcb is the ring-buffer state behind a queue's ECB. Storage is an
// externally supplied slice of Size message slots; In/Out wrap from End
// back to Start.
type qcb struct {
	storage []any
	start   int // always 0; kept for symmetry with the kernel's own Start/End naming
	end     int // one-past-last index == len(storage)
	in      int
	out     int
	size    int
	entries int

	nextFree *qcb
}

type qcbPool struct {
	qcbs []qcb
	free *qcb
}

func newQCBPool(n int) *qcbPool {
	p := &qcbPool{qcbs: make([]qcb, n)}
	for i := range p.qcbs {
		p.qcbs[i].nextFree = p.free
		p.free = &p.qcbs[i]
	}
	return p
}

func (p *qcbPool) popFree() *qcb {
	if p.free == nil {
		return nil
	}
	q := p.free
	p.free = q.nextFree
	q.nextFree = nil
	return q
}

func (p *qcbPool) pushFree(q *qcb) {
	q.storage = nil
	q.nextFree = p.free
	p.free = q
}

// QCreate allocates an ECB and a QCB bound together, ring-initialized
// empty over storage (len(storage) == size). Rejects ISR callers and
// exhausted pools.
func (k *Kernel) QCreate(storage []any) (*ECB, Err) {
	if k.InISR() {
		return nil, ErrPendISR
	}

	k.enterCritical()
	defer k.exitCritical()

	e := k.events.popFree()
	if e == nil {
		return nil, ErrMemInvalidPart
	}
	q := k.queues.popFree()
	if q == nil {
		k.events.pushFree(e)
		return nil, ErrMemInvalidPart
	}

	q.storage = storage
	q.start = 0
	q.end = len(storage)
	q.in = 0
	q.out = 0
	q.size = len(storage)
	q.entries = 0

	e.Type = EventQ
	e.Ptr = q
	e.wait = bitmapIndex{}

	return e, ErrNone
}

func qcbOf(e *ECB) *qcb { return e.Ptr.(*qcb) }

// QAccept pops one message from the front, non-blocking; returns nil if
// empty.
func (k *Kernel) QAccept(e *ECB) (any, Err) {
	if e.Type != EventQ {
		return nil, ErrEventType
	}
	k.enterCritical()
	defer k.exitCritical()
	q := qcbOf(e)
	if q.entries == 0 {
		return nil, ErrNone
	}
	msg := q.storage[q.out]
	q.out++
	if q.out == q.end {
		q.out = q.start
	}
	q.entries--
	return msg, ErrNone
}

// QPend pops a message, blocking the calling task up to timeout ticks
// (0 = forever) if the queue is currently empty.
func (k *Kernel) QPend(e *ECB, timeout uint32) (any, Err) {
	if e.Type != EventQ {
		return nil, ErrEventType
	}
	if k.InISR() {
		return nil, ErrPendISR
	}

	k.enterCritical()
	q := qcbOf(e)
	if q.entries > 0 {
		msg := q.storage[q.out]
		q.out++
		if q.out == q.end {
			q.out = q.start
		}
		q.entries--
		k.exitCritical()
		return msg, ErrNone
	}

	cur := k.tcbCur
	cur.Status |= WaitingQ
	cur.Delay = timeout
	k.EventTaskWait(e)
	k.schedLocked()
	k.exitCritical()

	k.enterCritical()
	defer k.exitCritical()
	if cur.PendMsg != nil {
		msg := cur.PendMsg
		cur.PendMsg = nil
		cur.Status = StatReady
		cur.EventPtr = nil
		return msg, ErrNone
	}
	if cur.Status&WaitingQ != 0 {
		k.EventTO(e)
		return nil, ErrTimeout
	}
	cur.EventPtr = nil
	return nil, ErrNone
}

// QPost posts msg FIFO: direct hand-off to the highest-priority waiter if
// one exists (the message is never enqueued in that case), else appended
// at In.
func (k *Kernel) QPost(e *ECB, msg any) Err {
	return k.qPostOpt(e, msg, PostOpt{})
}

// QPostFront posts msg LIFO (at Out) when there is no waiter.
func (k *Kernel) QPostFront(e *ECB, msg any) Err {
	return k.qPostOpt(e, msg, PostOpt{Front: true})
}

// QPostOpt posts msg per opt: opt.Front selects LIFO vs FIFO insertion
// when no waiter is present; opt.Broadcast wakes every current waiter
// with the same message instead of just the highest-priority one.
func (k *Kernel) QPostOpt(e *ECB, msg any, opt PostOpt) Err {
	return k.qPostOpt(e, msg, opt)
}

func (k *Kernel) qPostOpt(e *ECB, msg any, opt PostOpt) Err {
	if e.Type != EventQ {
		return ErrEventType
	}
	if msg == nil {
		return ErrPostNullPtr
	}

	k.enterCritical()
	q := qcbOf(e)

	if !e.wait.empty() {
		woke := false
		for {
			k.EventTaskRdy(e, msg, WaitingQ)
			woke = true
			if !opt.Broadcast || e.wait.empty() {
				break
			}
		}
		k.exitCritical()
		if woke && !k.InISR() {
			k.Sched()
		}
		return ErrNone
	}

	if q.entries >= q.size {
		k.exitCritical()
		return ErrQFull
	}

	if opt.Front {
		q.out--
		if q.out < q.start {
			q.out = q.end - 1
		}
		q.storage[q.out] = msg
	} else {
		q.storage[q.in] = msg
		q.in++
		if q.in == q.end {
			q.in = q.start
		}
	}
	q.entries++
	k.exitCritical()
	return ErrNone
}

// QFlush empties the ring without touching stored pointers.
func (k *Kernel) QFlush(e *ECB) Err {
	if e.Type != EventQ {
		return ErrEventType
	}
	k.enterCritical()
	defer k.exitCritical()
	q := qcbOf(e)
	q.in, q.out, q.entries = q.start, q.start, 0
	return ErrNone
}

// QDelete returns the ECB and QCB to their free pools, parallel to
// SemDelete.
func (k *Kernel) QDelete(e *ECB, opt DelOpt) Err {
	if e.Type != EventQ {
		return ErrEventType
	}
	if k.InISR() {
		return ErrDelISR
	}

	k.enterCritical()
	defer k.exitCritical()

	hasWaiters := !e.wait.empty()
	if hasWaiters && opt == DelOnlyIfIdle {
		return ErrTaskWaiting
	}

	q := qcbOf(e)
	released := false
	for !e.wait.empty() {
		k.EventTaskRdy(e, nil, WaitingQ)
		released = true
	}

	k.queues.pushFree(q)
	k.events.pushFree(e)

	if released {
		k.schedLocked()
	}
	return ErrNone
}

// QueueInfo is QQuery's snapshot.
type QueueInfo struct {
	Size    int
	Entries int
	WaitGrp uint8
	WaitTbl [8]uint8
}

// QQuery snapshots ring occupancy and the wait-table under a critical
// section.
func (k *Kernel) QQuery(e *ECB) (QueueInfo, Err) {
	if e.Type != EventQ {
		return QueueInfo{}, ErrEventType
	}
	k.enterCritical()
	defer k.exitCritical()
	q := qcbOf(e)
	return QueueInfo{Size: q.size, Entries: q.entries, WaitGrp: e.wait.grp, WaitTbl: e.wait.tbl}, ErrNone
}
