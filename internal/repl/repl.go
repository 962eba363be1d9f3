// Package repl implements pyvm's interactive loop. There is no
// source-level lexer/parser/compiler in this tree (spec.md section 1),
// so unlike the teacher's repl.Start (which re-lexes, re-parses, and
// re-compiles each line against a live VM), this one dispatches each
// line to one of internal/demo's pre-assembled programs and runs it
// fresh in its own frame.ThreadState.
package repl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"pyvm/internal/demo"
	"pyvm/internal/frame"
	"pyvm/internal/interp"
	"pyvm/internal/object"
)

// Start runs the REPL loop until stdin closes or the user types "exit".
// colorize controls whether the result line is bolded, decided by the
// caller's isatty check.
func Start(colorize bool) {
	fmt.Println("pyvm REPL | type a program name to run it, 'list' to see them, 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return
		case "list":
			for _, p := range demo.Programs {
				fmt.Printf("  %-10s %s\n", p.Name, p.Description)
			}
			continue
		}

		prog := demo.Lookup(line)
		if prog == nil {
			fmt.Printf("unknown program '%s'; type 'list' to see available ones\n", line)
			continue
		}

		f := frame.New(prog.Build(), object.Namespace{}, object.Namespace{}, nil)
		ts := frame.NewThreadState()
		result, err := interp.Run(ts, f)
		if err != nil {
			fmt.Println(err.Error())
			continue
		}
		r, rerr := object.Repr(result)
		if rerr != nil {
			fmt.Println(rerr.Error())
			continue
		}
		if colorize {
			fmt.Printf("\x1b[1m%s\x1b[0m\n", r)
		} else {
			fmt.Println(r)
		}
	}
}
