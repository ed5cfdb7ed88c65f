// Package tui implements the optional terminal inspector for tksim (§11):
// a register table plus a scrolling view titled "Disassembly" that appends
// the current pc on every refresh (instruction words are not decoded),
// stepped with "n" (single instruction) and "c" (run to halt), quitting
// with "q". It is
// grounded on the teacher's debugger.TUI, trimmed down to the register and
// disassembly panels and driving the same vm.VM.Step the headless CLI
// path uses — it never changes fault/halt semantics.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/mokshshah/tinker/internal/vm"
)

// inspector is the terminal inspector's view state.
type inspector struct {
	app      *tview.Application
	vmachine *vm.VM

	registerView *tview.TextView
	disasmView   *tview.TextView
	statusView   *tview.TextView

	runErr error
}

// Run opens the terminal inspector over machine and blocks until the user
// quits. machine must not have started executing yet.
func Run(machine *vm.VM) error {
	insp := &inspector{
		app:      tview.NewApplication(),
		vmachine: machine,
	}
	insp.build()
	insp.refresh()
	return insp.app.Run()
}

func (insp *inspector) build() {
	insp.registerView = tview.NewTextView().SetDynamicColors(true)
	insp.registerView.SetBorder(true).SetTitle(" Registers ")

	insp.disasmView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	insp.disasmView.SetBorder(true).SetTitle(" Disassembly ")

	insp.statusView = tview.NewTextView().SetDynamicColors(true)
	insp.statusView.SetBorder(true).SetTitle(" Status (n: step, c: continue, q: quit) ")

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(insp.registerView, 0, 1, false).
		AddItem(insp.statusView, 3, 0, false)

	layout := tview.NewFlex().
		AddItem(left, 40, 0, false).
		AddItem(insp.disasmView, 0, 1, false)

	insp.app.SetRoot(layout, true)
	insp.app.SetInputCapture(insp.handleKey)
}

func (insp *inspector) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q':
		insp.app.Stop()
		return nil
	case 'n':
		insp.step()
		return nil
	case 'c':
		insp.continueToHalt()
		return nil
	}
	return event
}

func (insp *inspector) step() {
	if insp.vmachine.Halted() || insp.runErr != nil {
		insp.refresh()
		return
	}
	if err := insp.vmachine.Step(); err != nil {
		insp.runErr = err
	}
	insp.refresh()
}

// displayUpdateFrequency throttles the register/disassembly redraw during
// a "c" (run-to-halt) continue so a long-running program doesn't flood the
// terminal with a redraw per instruction.
const displayUpdateFrequency = 100

func (insp *inspector) continueToHalt() {
	cycles := 0
	for !insp.vmachine.Halted() && insp.runErr == nil {
		if err := insp.vmachine.Step(); err != nil {
			insp.runErr = err
			break
		}
		cycles++
		if cycles%displayUpdateFrequency == 0 {
			insp.app.QueueUpdateDraw(insp.refresh)
		}
	}
	insp.refresh()
}

func (insp *inspector) refresh() {
	var regs strings.Builder
	for i := 0; i < len(insp.vmachine.Regs); i += 2 {
		fmt.Fprintf(&regs, "r%-2d 0x%016X   r%-2d 0x%016X\n",
			i, insp.vmachine.Regs[i], i+1, insp.vmachine.Regs[i+1])
	}
	insp.registerView.SetText(regs.String())
	insp.registerView.SetTitle(fmt.Sprintf(" Registers (pc=0x%X) ", insp.vmachine.PC))

	fmt.Fprintf(insp.disasmView, "pc=0x%X\n", insp.vmachine.PC)

	status := "running"
	switch {
	case insp.runErr != nil:
		status = "fault: " + insp.runErr.Error()
	case insp.vmachine.Halted():
		status = "halted"
	}
	insp.statusView.SetText(status)
}
