// Command ksim runs one of a small set of canned kernel scenarios
// against a live rtkernel.Kernel backed by internal/port.SimPort, the
// same "run the engine in a goroutine, let signals interrupt it"
// shape cmd/mipsvm uses for its CPU.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtkernel/internal/kernel"
	"rtkernel/internal/port"
)

func printIfVerbose(verbose bool, format string, v ...interface{}) {
	if verbose {
		log.Printf(format, v...)
	}
}

type scenario struct {
	name string
	desc string
	run  func(verbose bool) error
}

var scenarios = []scenario{
	{"preempt", "high-priority task preempts a lower-priority poster", runPreempt},
	{"timeout", "a pend with no poster times out after its tick budget", runTimeout},
	{"handoff", "a posted queue message hands off directly to the waiter", runHandoff},
	{"broadcast", "a broadcast post wakes every queue waiter", runBroadcast},
}

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	name := flag.String("scenario", "preempt", "scenario to run (see -list)")
	list := flag.Bool("list", false, "list available scenarios and exit")
	flag.Parse()

	if *list {
		for _, s := range scenarios {
			log.Printf("%-10s %s", s.name, s.desc)
		}
		return
	}

	var sc *scenario
	for i := range scenarios {
		if scenarios[i].name == *name {
			sc = &scenarios[i]
			break
		}
	}
	if sc == nil {
		log.Fatalf("unknown scenario %q (use -list)", *name)
	}

	printIfVerbose(*verbose, "Starting scenario %q...", sc.name)
	start := time.Now()

	done := make(chan error, 1)
	go func() {
		done <- sc.run(*verbose)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		printIfVerbose(*verbose, "Signal received, abandoning scenario...")
		os.Exit(1)
	case err := <-done:
		if err != nil {
			log.Fatalf("scenario %q failed: %v", sc.name, err)
		}
	}

	printIfVerbose(*verbose, "Scenario %q passed in %s", sc.name, time.Since(start))
}

func newSim() (*kernel.Kernel, *port.SimPort) {
	cfg := kernel.DefaultConfig()
	cfg.StatEnabled = false
	p := port.NewSimPort(port.HookSet{})
	return kernel.New(cfg, p), p
}

func runPreempt(verbose bool) error {
	k, _ := newSim()
	sem, errc := k.SemCreate(0)
	if errc != kernel.ErrNone {
		return errc
	}

	result := make(chan kernel.Err, 1)
	if _, errc := k.CreateTask(5, func() { result <- k.SemPend(sem, 0) }, 4096); errc != kernel.ErrNone {
		return errc
	}
	if _, errc := k.CreateTask(20, func() { k.SemPost(sem) }, 4096); errc != kernel.ErrNone {
		return errc
	}

	k.Start()
	printIfVerbose(verbose, "waiting for the high-priority task to acquire the semaphore...")
	got := <-result
	printIfVerbose(verbose, "SemPend returned %v, ctx switches = %d", got, k.CtxSwCtr())
	if got != kernel.ErrNone {
		return got
	}
	return nil
}

func runTimeout(verbose bool) error {
	k, _ := newSim()
	sem, _ := k.SemCreate(0)
	result := make(chan kernel.Err, 1)
	if _, errc := k.CreateTask(10, func() { result <- k.SemPend(sem, 3) }, 4096); errc != kernel.ErrNone {
		return errc
	}

	k.Start()
	for i := 0; i < 3; i++ {
		printIfVerbose(verbose, "tick %d", i+1)
		k.IntEnter()
		k.TimeTick()
		k.IntExit()
	}
	got := <-result
	printIfVerbose(verbose, "SemPend returned %v after 3 ticks with no poster", got)
	if got != kernel.ErrTimeout {
		return got
	}
	return nil
}

func runHandoff(verbose bool) error {
	k, _ := newSim()
	q, errc := k.QCreate(make([]any, 4))
	if errc != kernel.ErrNone {
		return errc
	}

	result := make(chan any, 1)
	k.CreateTask(10, func() {
		msg, _ := k.QPend(q, 0)
		result <- msg
	}, 4096)
	k.CreateTask(20, func() { k.QPost(q, "hello") }, 4096)

	k.Start()
	msg := <-result
	printIfVerbose(verbose, "waiter received %q directly, no enqueue", msg)
	return nil
}

func runBroadcast(verbose bool) error {
	k, _ := newSim()
	q, errc := k.QCreate(make([]any, 4))
	if errc != kernel.ErrNone {
		return errc
	}

	results := make(chan int, 3)
	for _, prio := range []int{4, 7, 9} {
		k.CreateTask(prio, func() {
			k.QPend(q, 0)
			results <- prio
			k.Delay(1)
		}, 4096)
	}
	k.CreateTask(20, func() {
		k.QPostOpt(q, "all", kernel.PostOpt{Broadcast: true})
	}, 4096)

	k.Start()
	for i := 0; i < 3; i++ {
		prio := <-results
		printIfVerbose(verbose, "task at priority %d woke from the broadcast", prio)
	}
	return nil
}
