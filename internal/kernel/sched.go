package kernel

// Sched picks the highest-priority ready task and, if it differs from the
// one currently running, performs a task-level context switch. A no-op
// while interrupts are nested or the scheduler is locked.
func (k *Kernel) Sched() {
	k.enterCritical()
	defer k.exitCritical()
	k.schedLocked()
}

// schedLocked is Sched's body; callers that already hold the critical
// section (sem.go, queue.go, idle.go's Delay) call this directly instead
// of re-entering.
func (k *Kernel) schedLocked() {
	if k.intNesting != 0 || k.lockNesting != 0 {
		return
	}
	k.prioHighRdy = k.ready.highest()
	if k.prioHighRdy == k.prioCur {
		return
	}
	k.tcbHighRdy = k.tcbs.prioTbl[k.prioHighRdy]
	k.ctxSwCtr++
	cur := k.tcbCur
	k.tcbCur = k.tcbHighRdy
	k.prioCur = k.prioHighRdy
	k.port.TaskSwHook()
	k.port.TaskSw(cur, k.tcbHighRdy)
}

// intExitReschedule is IntExit's reschedule step: ISR-level, so it uses
// the port's already-on-stack-aware IntCtxSw instead of TaskSw.
func (k *Kernel) intExitReschedule() {
	k.enterCritical()
	defer k.exitCritical()

	if k.intNesting != 0 || k.lockNesting != 0 {
		return
	}
	prioHighRdy := k.ready.highest()
	if prioHighRdy == k.prioCur {
		return
	}
	k.prioHighRdy = prioHighRdy
	k.tcbHighRdy = k.tcbs.prioTbl[k.prioHighRdy]
	k.ctxSwCtr++
	cur := k.tcbCur
	k.tcbCur = k.tcbHighRdy
	k.prioCur = k.prioHighRdy
	k.port.TaskSwHook()
	k.port.IntCtxSw(cur, k.tcbHighRdy)
}

// SchedLock inhibits rescheduling without disabling interrupts. Saturates
// at 255. Wake-ups are still recorded; the deferred reschedule happens
// when SchedUnlock returns the nesting count to 0.
func (k *Kernel) SchedLock() {
	k.enterCritical()
	defer k.exitCritical()
	if k.lockNesting < 255 {
		k.lockNesting++
	}
}

// SchedUnlock releases one level of scheduler lock and, if that was the
// last one and the core is not in an ISR, reschedules.
func (k *Kernel) SchedUnlock() {
	k.enterCritical()
	if k.lockNesting == 0 {
		k.exitCritical()
		return
	}
	k.lockNesting--
	if k.lockNesting == 0 && k.intNesting == 0 {
		k.exitCritical()
		k.Sched()
		return
	}
	k.exitCritical()
}

// Start computes the highest-priority ready task (always the idle task at
// first, unless application tasks of higher priority were created before
// Start) and hands off to the port's one-shot, never-returning start
// routine.
func (k *Kernel) Start() {
	k.enterCritical()
	if k.running {
		k.exitCritical()
		return
	}
	k.prioHighRdy = k.ready.highest()
	k.prioCur = k.prioHighRdy
	k.tcbHighRdy = k.tcbs.prioTbl[k.prioHighRdy]
	k.tcbCur = k.tcbHighRdy
	highRdy := k.tcbHighRdy
	k.running = true
	k.exitCritical()

	k.port.TaskSwHook()
	k.port.StartHighRdy(highRdy)
}
