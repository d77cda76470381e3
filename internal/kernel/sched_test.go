package kernel

import (
	"runtime"
	"testing"
)

// waitUntil spins (yielding to other goroutines) until cond reports true
// or the iteration budget is exhausted. Used to synchronize with a task
// goroutine's progress past a point the kernel's own state transitions
// don't otherwise expose a blocking handshake for.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 100000; i++ {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("waitUntil: condition never became true")
}

// TestPriorityPreemption mirrors a canonical scenario: a high-priority
// task blocked on a semaphore is woken by a lower-priority poster and
// immediately preempts it.
func TestPriorityPreemption(t *testing.T) {
	k, _ := testKernel()

	sem, errc := k.SemCreate(0)
	if errc != ErrNone {
		t.Fatalf("SemCreate: %v", errc)
	}

	result := make(chan Err, 1)

	if _, errc := k.CreateTask(5, func() {
		result <- k.SemPend(sem, 0)
	}, 256); errc != ErrNone {
		t.Fatalf("CreateTask(hi): %v", errc)
	}
	if _, errc := k.CreateTask(20, func() {
		k.SemPost(sem)
	}, 256); errc != ErrNone {
		t.Fatalf("CreateTask(lo): %v", errc)
	}

	k.Start()

	got := <-result
	if got != ErrNone {
		t.Fatalf("SemPend result = %v, want ErrNone", got)
	}

	hi := k.TaskByPrio(5)
	if cur := k.CurTask(); cur != hi {
		t.Errorf("running task = prio %d, want prio 5", cur.Prio)
	}
	// One switch to hand off to T_lo after T_hi blocks, one switch back to
	// T_hi once Post wakes it.
	if got := k.CtxSwCtr(); got != 2 {
		t.Errorf("CtxSwCtr = %d, want 2", got)
	}
	if info, _ := k.SemQuery(sem); info.Count != 0 {
		t.Errorf("sem count = %d, want 0", info.Count)
	}
}

// TestSemTimeout mirrors a canonical scenario: a pend with no poster
// times out after the requested number of ticks and leaves the waiter
// and the event fully cleaned up.
func TestSemTimeout(t *testing.T) {
	k, _ := testKernel()

	sem, _ := k.SemCreate(0)
	result := make(chan Err, 1)

	task, errc := k.CreateTask(10, func() {
		result <- k.SemPend(sem, 3)
	}, 256)
	if errc != ErrNone {
		t.Fatalf("CreateTask: %v", errc)
	}

	k.Start()

	waitUntil(t, func() bool {
		k.enterCritical()
		defer k.exitCritical()
		return task.Status&WaitingSem != 0 && task.Delay == 3
	})

	for i := 0; i < 3; i++ {
		k.IntEnter()
		k.TimeTick()
		k.IntExit()
	}

	got := <-result
	if got != ErrTimeout {
		t.Fatalf("SemPend result = %v, want ErrTimeout", got)
	}
	if info, _ := k.SemQuery(sem); info.WaitGrp != 0 {
		t.Errorf("sem wait group = %#x, want 0", info.WaitGrp)
	}
	if task.Status != StatReady {
		t.Errorf("task status = %v, want Ready", task.Status)
	}
	if task.EventPtr != nil {
		t.Errorf("task EventPtr = %v, want nil", task.EventPtr)
	}
}
