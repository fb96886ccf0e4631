// Command asyncinputctl is an interactive inspector for the acquisition
// engine: with no flags it drops into a REPL (gated on an attached TTY);
// -list dumps every registered device once; -wait-for blocks until a
// device matching a name substring attaches, then exits.
//
// Grounded on the original C reference's examples/device_specific_demo.c
// (per-device bus/vendor/product/version listing) and
// examples/hotplug_mouse_wait.c (block-until-attach), both dropped by the
// distillation's device-acceptance-predicate summary but reinstated here as
// small standalone tools (SPEC_FULL.md's supplemented-features section).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"

	"asyncinput/device"
	"asyncinput/engine"
	"asyncinput/internal/logx"
)

func main() {
	devDir := flag.String("dev", "/dev/input", "device directory")
	list := flag.Bool("list", false, "list currently-registered devices and exit")
	waitFor := flag.String("wait-for", "", "block until a device whose name contains this substring attaches")
	flag.Parse()

	log := logx.NewStderr(logx.LError)
	if err := engine.Init(*devDir, 1024, "", log); err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		os.Exit(1)
	}
	defer engine.Shutdown()

	switch {
	case *list:
		runList()
	case *waitFor != "":
		runWaitFor(*waitFor)
	default:
		runREPL()
	}
}

func runList() {
	n, _ := engine.DeviceCount()
	fmt.Printf("%d device(s)\n", n)
	engine.ForEachDevice(func(info device.Info) {
		fmt.Printf("id=%d path=%s name=%q bus=%#x vendor=%#x product=%#x version=%#x\n",
			info.ID, info.Path, info.Name, info.Bus, info.Vendor, info.Product, info.Version)
	})
}

func runWaitFor(substr string) {
	found := make(chan device.Info, 1)
	engine.SetFilter(func(info device.Info, ctx interface{}) bool {
		if strings.Contains(info.Name, substr) {
			select {
			case found <- info:
			default:
			}
		}
		return true
	}, nil)

	select {
	case info := <-found:
		fmt.Printf("attached: id=%d path=%s name=%q\n", info.ID, info.Path, info.Name)
	case <-time.After(30 * time.Second):
		fmt.Fprintln(os.Stderr, "timed out waiting for a matching device")
		os.Exit(1)
	}
}

func runREPL() {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "asyncinputctl: not an interactive terminal, use -list or -wait-for")
		os.Exit(1)
	}
	p := prompt.New(executor, completer, prompt.OptionPrefix("asyncinput> "))
	p.Run()
}

func executor(line string) {
	switch strings.TrimSpace(line) {
	case "count":
		n, _ := engine.DeviceCount()
		fmt.Println(n)
	case "list":
		runList()
	case "exit", "quit":
		os.Exit(0)
	case "":
	default:
		fmt.Println("commands: count, list, exit")
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	suggestions := []prompt.Suggest{
		{Text: "count", Description: "print the number of registered devices"},
		{Text: "list", Description: "list registered devices"},
		{Text: "exit", Description: "quit"},
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}
