package kernel

// SemCreate allocates an ECB tagged Sem with the given initial count.
// Fails from an ISR or when the ECB pool is exhausted.
func (k *Kernel) SemCreate(initial uint16) (*ECB, Err) {
	if k.InISR() {
		return nil, ErrPendISR
	}

	k.enterCritical()
	defer k.exitCritical()

	e := k.events.popFree()
	if e == nil {
		return nil, ErrMemInvalidPart
	}
	e.Type = EventSem
	e.Count = initial
	e.wait = bitmapIndex{}
	return e, ErrNone
}

// SemAccept is the non-blocking poll: decrements and returns the prior
// count if the resource is available, else returns 0.
func (k *Kernel) SemAccept(e *ECB) (uint16, Err) {
	if e.Type != EventSem {
		return 0, ErrEventType
	}
	k.enterCritical()
	defer k.exitCritical()
	before := e.Count
	if e.Count > 0 {
		e.Count--
	}
	return before, ErrNone
}

// SemPend acquires the semaphore, blocking the calling task up to timeout
// ticks (0 = forever) if the count is currently 0. ISR callers are
// rejected.
func (k *Kernel) SemPend(e *ECB, timeout uint32) Err {
	if e.Type != EventSem {
		return ErrEventType
	}
	if k.InISR() {
		return ErrPendISR
	}

	k.enterCritical()
	if e.Count > 0 {
		e.Count--
		k.exitCritical()
		return ErrNone
	}

	cur := k.tcbCur
	cur.Status |= WaitingSem
	cur.Delay = timeout
	k.EventTaskWait(e)
	k.schedLocked()
	k.exitCritical()

	// Resumed: either the wait timed out (tick engine readied us but the
	// WaitingSem bit is still set) or a poster satisfied it (EventTaskRdy
	// already cleared WaitingSem and EventPtr).
	k.enterCritical()
	defer k.exitCritical()
	if cur.Status&WaitingSem != 0 {
		k.EventTO(e)
		return ErrTimeout
	}
	cur.EventPtr = nil
	return ErrNone
}

// SemPost increments the semaphore or, if a task is waiting, wakes the
// highest-priority waiter directly without ever incrementing the count.
// Safe to call from an ISR; IntExit performs the reschedule in that case.
func (k *Kernel) SemPost(e *ECB) Err {
	if e.Type != EventSem {
		return ErrEventType
	}

	k.enterCritical()
	if !e.wait.empty() {
		k.EventTaskRdy(e, nil, WaitingSem)
		k.exitCritical()
		if !k.InISR() {
			k.Sched()
		}
		return ErrNone
	}
	if e.Count == 65535 {
		k.exitCritical()
		return ErrSemOverflow
	}
	e.Count++
	k.exitCritical()
	return ErrNone
}

// SemDelete returns e to the free pool. DelOnlyIfIdle fails if any task is
// waiting; DelAlways wakes every waiter through EventTaskRdy (which clears
// its WaitingSem bit, so its SemPend returns ErrNone) before freeing the
// ECB.
func (k *Kernel) SemDelete(e *ECB, opt DelOpt) Err {
	if e.Type != EventSem {
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

	released := false
	for !e.wait.empty() {
		k.EventTaskRdy(e, nil, WaitingSem)
		released = true
	}

	k.events.pushFree(e)

	if released {
		k.schedLocked()
	}
	return ErrNone
}

// SemInfo is SemQuery's snapshot.
type SemInfo struct {
	Count    uint16
	WaitGrp  uint8
	WaitTbl  [8]uint8
}

// SemQuery snapshots count and wait-table under a critical section.
func (k *Kernel) SemQuery(e *ECB) (SemInfo, Err) {
	if e.Type != EventSem {
		return SemInfo{}, ErrEventType
	}
	k.enterCritical()
	defer k.exitCritical()
	return SemInfo{Count: e.Count, WaitGrp: e.wait.grp, WaitTbl: e.wait.tbl}, ErrNone
}
