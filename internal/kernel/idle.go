package kernel

// Delay blocks the calling task for the given number of ticks (0 returns
// immediately). Unlike Sem/QPend there is no event object: the task is
// simply pulled out of the ready set until the tick engine's delay
// countdown puts it back.
func (k *Kernel) Delay(ticks uint32) {
	if ticks == 0 {
		return
	}
	k.enterCritical()
	cur := k.tcbCur
	cur.Delay = ticks
	k.readyRemove(cur)
	k.schedLocked()
	k.exitCritical()
}

// idleTaskBody is the idle task's infinite loop: increment
// IdleCtr under a critical section, call the idle hook, repeat. Never
// blocks, so it is always ready to soak up unused CPU time.
func idleTaskBody(k *Kernel) func(arg any) {
	return func(arg any) {
		for {
			k.enterCritical()
			k.idleCtr++
			k.exitCritical()
			k.port.TaskIdleHook()
		}
	}
}

// statTaskBody is the optional CPU-usage task at STAT_PRIO: wait two ticks
// to sync, calibrate IdleCtrMax over one second, then once per second
// recompute CPUUsage from how much idle time elapsed.
func statTaskBody(k *Kernel) func(arg any) {
	return func(arg any) {
		k.Delay(2) // let the idle counter settle before calibrating

		k.enterCritical()
		k.idleCtr = 0
		k.exitCritical()

		ticksPerSec := uint32(k.cfg.TicksPerSec)
		k.Delay(ticksPerSec)

		k.enterCritical()
		k.idleCtrMax = k.idleCtr
		k.exitCritical()

		for {
			k.port.TaskStatHook()

			k.enterCritical()
			run := k.idleCtr
			k.idleCtr = 0
			k.idleCtrRun = run
			max := k.idleCtrMax
			k.exitCritical()

			if max < 100 {
				// Idle never got a chance to run a full window; recalibrate
				// instead of dividing by (near-)zero.
				k.enterCritical()
				k.idleCtrMax = run
				k.exitCritical()
			} else {
				usage := 100 - int(run)/(int(max)/100)
				if usage < 0 {
					usage = 0
				}
				k.enterCritical()
				k.cpuUsage = uint8(usage)
				k.statRdy = true
				k.exitCritical()
			}

			k.Delay(ticksPerSec)
		}
	}
}
