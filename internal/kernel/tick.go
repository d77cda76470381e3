package kernel

// TimeTick is called from the tick ISR (or a high-priority task driving a
// software timer). It advances the tick counter and, once the kernel is
// running, decrements every non-idle task's delay counter, readying
// timed-out tasks.
func (k *Kernel) TimeTick() {
	k.port.TimeTickHook()

	k.enterCritical()
	k.time++
	running := k.running
	k.exitCritical()

	if !running {
		return
	}

	idlePrio := k.cfg.IdlePrio()

	k.enterCritical()
	t := k.tcbs.all
	k.exitCritical()

	for t != nil {
		k.enterCritical()
		next := t.next
		if t.Prio != idlePrio {
			k.tickOne(t)
		}
		k.exitCritical()
		t = next
	}
}

// tickOne runs the per-task body of TimeTick's walk. Caller holds the
// critical section.
func (k *Kernel) tickOne(t *TCB) {
	if t.Delay == 0 {
		return
	}
	t.Delay--
	if t.Delay != 0 {
		return
	}
	if t.Status&Suspended == 0 {
		k.readyInsert(t)
	} else {
		// Still suspended: re-arm so the task is re-examined next tick,
		// otherwise clearing Suspend later would never wake it
		//.
		t.Delay = 1
	}
}
