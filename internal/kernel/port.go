package kernel

// Port is the narrow interface the core calls out to, covering
// everything architecture- or application-specific: register
// save/restore, the initial context trampoline, and optional user hooks.
// The core never inspects a Port's internals; it only ever calls through
// this interface, so a single core package serves any port (real hardware,
// a simulator, a future architecture) that implements it.
type Port interface {
	// EnterCritical/ExitCritical bracket a span with interrupts disabled.
	// The core never nests these calls. SimPort implements them as a plain
	// mutex, which does not nest: a second EnterCritical before the
	// matching ExitCritical blocks.
	EnterCritical()
	ExitCritical()

	// TaskSw performs a cooperative context switch: save the caller's
	// context (cur) and resume highRdy. The kernel has already recorded
	// highRdy as the current task when this is called. Expects interrupts
	// already disabled by the caller.
	TaskSw(cur, highRdy *TCB)

	// IntCtxSw performs an ISR-exit context switch: the interrupted task's
	// context is already on its own stack, so only the resumption half of
	// TaskSw is needed.
	IntCtxSw(cur, highRdy *TCB)

	// StartHighRdy is called exactly once by Kernel.Start, after Running
	// has already been latched true and TaskSwHook already invoked. It
	// must load TCBHighRdy's context and never return.
	StartHighRdy(highRdy *TCB)

	// StkInit builds the initial fake-interrupt frame for a new task and
	// returns the resulting stack pointer.
	StkInit(entry func(arg any), arg any, stkBase uintptr, opt TaskOpt) uintptr

	// Hooks. The core guarantees the calling context documented at each
	// call site (critical section held, task context, etc.) and otherwise
	// treats these as opaque.
	TaskSwHook()
	TaskCreateHook(tcb *TCB)
	TaskDelHook(tcb *TCB)
	TaskIdleHook()
	TaskStatHook()
	TimeTickHook()
	TCBInitHook(tcb *TCB)
	InitHookBegin()
	InitHookEnd()
}

// TaskOpt mirrors the per-task creation option bits a real port consumes
// when building the initial stack frame (stack-checking enabled, save FP
// registers, etc). The core only stores and forwards it.
type TaskOpt uint16

const (
	TaskOptStkChk TaskOpt = 1 << iota
	TaskOptStkClr
	TaskOptSaveFP
)
