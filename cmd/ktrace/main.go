// Command ktrace runs a named kernel scenario with the task-switch and
// tick port hooks wired to a recorder and renders the resulting event
// sequence as a
// readable listing — the same "turn raw machine state into a table a
// human can read" role cmd/mips_disassemble plays for raw instruction
// words, just for scheduler events instead of opcodes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"rtkernel/internal/kernel"
	"rtkernel/internal/port"
)

type event struct {
	seq    int
	kind   string
	detail string
}

type recorder struct {
	events []event
}

func (r *recorder) record(kind, detail string) {
	r.events = append(r.events, event{seq: len(r.events), kind: kind, detail: detail})
}

func main() {
	name := flag.String("scenario", "preempt", "scenario to trace: preempt, timeout, handoff")
	flag.Parse()

	rec := &recorder{}
	k, _ := newTracedSim(rec)

	switch *name {
	case "preempt":
		tracePreempt(k, rec)
	case "timeout":
		traceTimeout(k, rec)
	case "handoff":
		traceHandoff(k, rec)
	default:
		log.Fatalf("unknown scenario %q", *name)
	}

	render(rec)
}

func newTracedSim(rec *recorder) (*kernel.Kernel, *port.SimPort) {
	cfg := kernel.DefaultConfig()
	cfg.StatEnabled = false
	p := port.NewSimPort(port.HookSet{
		TaskSwHook:   func() { rec.record("ctx-switch", fmt.Sprintf("ctxSwCtr now pending")) },
		TimeTickHook: func() { rec.record("tick", "") },
	})
	return kernel.New(cfg, p), p
}

func tracePreempt(k *kernel.Kernel, rec *recorder) {
	sem, _ := k.SemCreate(0)
	result := make(chan kernel.Err, 1)
	k.CreateTask(5, func() {
		rec.record("task-start", "prio 5 pending on sem")
		result <- k.SemPend(sem, 0)
		rec.record("task-resume", "prio 5 acquired sem")
	}, 4096)
	k.CreateTask(20, func() {
		rec.record("task-start", "prio 20 posting sem")
		k.SemPost(sem)
	}, 4096)
	k.Start()
	<-result
	rec.record("done", fmt.Sprintf("ctxSwCtr=%d", k.CtxSwCtr()))
}

func traceTimeout(k *kernel.Kernel, rec *recorder) {
	sem, _ := k.SemCreate(0)
	result := make(chan kernel.Err, 1)
	k.CreateTask(10, func() {
		rec.record("task-start", "prio 10 pending, timeout=3")
		result <- k.SemPend(sem, 3)
	}, 4096)
	k.Start()
	for i := 0; i < 3; i++ {
		k.IntEnter()
		k.TimeTick()
		k.IntExit()
	}
	got := <-result
	rec.record("done", fmt.Sprintf("pend result=%v", got))
}

func traceHandoff(k *kernel.Kernel, rec *recorder) {
	q, _ := k.QCreate(make([]any, 4))
	result := make(chan any, 1)
	k.CreateTask(10, func() {
		rec.record("task-start", "prio 10 pending on queue")
		msg, _ := k.QPend(q, 0)
		result <- msg
	}, 4096)
	k.CreateTask(20, func() {
		rec.record("task-start", "prio 20 posting queue")
		k.QPost(q, "hello")
	}, 4096)
	k.Start()
	<-result
	rec.record("done", "")
}

func render(rec *recorder) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tEVENT\tDETAIL")
	for _, e := range rec.events {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.seq, e.kind, e.detail)
	}
	w.Flush()
}
