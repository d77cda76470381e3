// Command kmonitor is an interactive, single-keystroke REPL over a live
// rtkernel.Kernel. It puts the terminal in raw mode the way cmd/lc3 left
// commented out (term.MakeRaw/term.Restore) and reads one key at a time
// with github.com/eiannone/keyboard the way cmd/lc3 already does for its
// trap handling, rather than buffering whole lines.
package main

import (
	"fmt"
	"os"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"rtkernel/internal/kernel"
	"rtkernel/internal/port"
)

const help = `kmonitor commands:
  t   advance one tick
  c   create a task at the next free demo priority
  s   post the demo semaphore
  q   post the demo queue
  i   print kernel state (ready bitmap, tasks)
  h   show this help
  x   quit
`

func main() {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kmonitor: terminal does not support raw mode:", err)
		os.Exit(1)
	}
	defer term.Restore(fd, oldState)

	if err := keyboard.Open(); err != nil {
		fmt.Fprintln(os.Stderr, "kmonitor: keyboard.Open:", err)
		os.Exit(1)
	}
	defer keyboard.Close()

	cfg := kernel.DefaultConfig()
	cfg.StatEnabled = false
	p := port.NewSimPort(port.HookSet{})
	k := kernel.New(cfg, p)

	sem, _ := k.SemCreate(0)
	queue, _ := k.QCreate(make([]any, 8))
	nextPrio := 10

	k.Start()

	printState(k)
	writeLine(help)

	for {
		writeLine("> ")
		r, key, err := keyboard.GetSingleKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, "\r\nkmonitor:", err)
			return
		}
		if key == keyboard.KeyCtrlC || key == keyboard.KeyEsc {
			return
		}
		if key == keyboard.KeyEnter {
			continue
		}

		switch r {
		case 't':
			k.IntEnter()
			k.TimeTick()
			k.IntExit()
			writeLine(fmt.Sprintf("\r\ntick -> time=%d\r\n", k.Time()))
		case 'c':
			prio := nextPrio
			nextPrio++
			if _, errc := k.CreateTask(prio, func() {
				k.SemPend(sem, 0)
			}, 4096); errc != kernel.ErrNone {
				writeLine(fmt.Sprintf("\r\ncreate failed: %v\r\n", errc))
			} else {
				writeLine(fmt.Sprintf("\r\ncreated task at priority %d, pending on the demo semaphore\r\n", prio))
			}
		case 's':
			errc := k.SemPost(sem)
			writeLine(fmt.Sprintf("\r\nSemPost -> %v\r\n", errc))
		case 'q':
			errc := k.QPost(queue, "demo")
			writeLine(fmt.Sprintf("\r\nQPost -> %v\r\n", errc))
		case 'i':
			writeLine("\r\n")
		case 'h':
			writeLine("\r\n" + help)
			continue
		case 'x':
			return
		default:
			writeLine(fmt.Sprintf("\r\nunknown command %q, press h for help\r\n", r))
			continue
		}
		printState(k)
	}
}

// writeLine writes raw bytes straight to stdout; raw terminal mode means
// \n alone does not also return the cursor, so every line needs \r\n.
func writeLine(s string) {
	os.Stdout.WriteString(s)
}

func printState(k *kernel.Kernel) {
	grp := k.ReadyGroup()
	tbl := k.ReadyTable()
	writeLine(fmt.Sprintf("ready: grp=%08b tbl=%v\r\n", grp, tbl))
	for _, t := range k.Tasks() {
		writeLine(fmt.Sprintf("  prio=%-3d status=%#x delay=%d\r\n", t.Prio, t.Status, t.Delay))
	}
}
