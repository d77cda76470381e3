package kernel

// CreateTask is a minimal task-create entrypoint. Full task creation
// (and its priority-uniqueness validation) is treated as an external
// collaborator's job; this wrapper exists so the kernel is usable without
// a separate application-level layer — it performs the one precondition
// check TCBInit itself assumes has already happened, then delegates to
// the port for stack setup and TCBInit for registration.
func (k *Kernel) CreateTask(prio int, body func(), stkSize uint32) (*TCB, Err) {
	if prio < 0 || prio > k.cfg.LowestPrio {
		return nil, ErrInvalidOpt
	}
	if k.TaskByPrio(prio) != nil {
		return nil, ErrInvalidOpt
	}

	stkPtr := k.port.StkInit(func(any) { body() }, nil, 0, 0)
	t, errc := k.TCBInit(prio, stkPtr, 0, uint32(prio), stkSize, nil, 0)
	if errc != ErrNone {
		return nil, errc
	}
	k.port.TaskCreateHook(t)
	return t, ErrNone
}
