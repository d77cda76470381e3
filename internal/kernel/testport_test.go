package kernel

import "sync"

// testPort is a minimal in-package Port used only by this package's own
// tests. It is a smaller sibling of internal/port.SimPort (which this
// package cannot import without a cycle): same baton-channel idea, no
// hooks, no eviction/Yield support since these tests never run the idle
// loop long enough to need preemption mid-hook.
type testPort struct {
	mu      sync.Mutex
	stateMu sync.Mutex
	resume  map[*TCB]chan struct{}
	pending map[uintptr]func()
	nextTok uintptr
}

func newTestPort() *testPort {
	return &testPort{
		resume:  make(map[*TCB]chan struct{}),
		pending: make(map[uintptr]func()),
	}
}

func (p *testPort) EnterCritical() { p.mu.Lock() }
func (p *testPort) ExitCritical()  { p.mu.Unlock() }

func (p *testPort) chanFor(t *TCB) chan struct{} {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	c, ok := p.resume[t]
	if !ok {
		c = make(chan struct{})
		p.resume[t] = c
	}
	return c
}

func (p *testPort) TaskSw(cur, highRdy *TCB) {
	high := p.chanFor(highRdy)
	curCh := p.chanFor(cur)
	// The held critical section belongs to the outgoing task's context:
	// release it while parked and take it back once resumed.
	p.mu.Unlock()
	high <- struct{}{}
	<-curCh
	p.mu.Lock()
}

func (p *testPort) IntCtxSw(cur, highRdy *TCB) {
	high := p.chanFor(highRdy)
	high <- struct{}{}
}

func (p *testPort) StartHighRdy(highRdy *TCB) {
	p.chanFor(highRdy) <- struct{}{}
}

func (p *testPort) StkInit(entry func(arg any), arg any, stkBase uintptr, opt TaskOpt) uintptr {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.nextTok++
	tok := p.nextTok
	p.pending[tok] = func() { entry(arg) }
	return tok
}

func (p *testPort) TaskCreateHook(t *TCB) {
	p.stateMu.Lock()
	fn, ok := p.pending[t.StkPtr]
	if ok {
		delete(p.pending, t.StkPtr)
	}
	p.stateMu.Unlock()
	ch := p.chanFor(t)
	if !ok {
		return
	}
	go func() {
		<-ch
		fn()
	}()
}

func (p *testPort) TaskSwHook()        {}
func (p *testPort) TaskDelHook(*TCB)   {}
func (p *testPort) TaskIdleHook()      {}
func (p *testPort) TaskStatHook()      {}
func (p *testPort) TimeTickHook()      {}
func (p *testPort) TCBInitHook(*TCB)   {}
func (p *testPort) InitHookBegin()     {}
func (p *testPort) InitHookEnd()       {}

// testKernel builds a Kernel over a small Config with the stat task
// disabled (most tests don't want an extra always-runnable task
// competing for priorities) and a testPort.
func testKernel() (*Kernel, *testPort) {
	cfg := DefaultConfig()
	cfg.MaxTasks = 16
	cfg.MaxEvents = 8
	cfg.MaxQs = 8
	cfg.MaxMemParts = 4
	cfg.LowestPrio = 30
	cfg.StatEnabled = false
	p := newTestPort()
	k := New(cfg, p)
	return k, p
}
