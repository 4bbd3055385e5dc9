package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"deedles.dev/ream"
	"deedles.dev/ream/parser"
	"deedles.dev/ream/scanner"
	"github.com/peterh/liner"
)

const (
	historyFile = ".ream_history"
	prompt      = "ream> "
	promptCont  = "....> "
)

const help = `Enter expressions to evaluate them. Definitions are kept between lines.
Commands:
  ,type expr   print the type of expr without evaluating it
  ,tag :tag    print the algebraic type that declares tag
  ,read data   print the data read from the rest of the line
  ,help        print this message
  ,quit        exit
`

func repl(ctx context.Context, rt *ream.Runtime) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		src, err := readInput(ln)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if cmd, ok := strings.CutPrefix(strings.TrimSpace(src), ","); ok {
			if command(rt, cmd) {
				return nil
			}
			continue
		}

		v, err := rt.Run(ctx, src)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(v)
	}
}

// readInput reads lines until they form a complete program or an
// error that more input could not fix.
func readInput(ln *liner.State) (string, error) {
	var buf strings.Builder
	for {
		p := prompt
		if buf.Len() > 0 {
			p = promptCont
		}

		line, err := ln.Prompt(p)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return "", nil
			}
			return "", err
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		src := buf.String()
		if strings.HasPrefix(strings.TrimSpace(src), ",") {
			return src, nil
		}
		_, err = parser.ParseString(src)
		if incomplete(err) {
			continue
		}
		return src, nil
	}
}

func incomplete(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, scanner.ErrUnterminatedString)
}

func command(rt *ream.Runtime, cmd string) (exit bool) {
	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case "quit", "q":
		return true

	case "help", "h":
		fmt.Print(help)

	case "type", "t":
		prog, err := parser.ParseString(arg)
		if err != nil {
			fmt.Println(err)
			break
		}
		c := rt.Checker()
		snap := c.Snapshot()
		for _, expr := range prog {
			t, err := c.Infer(expr, c.Global())
			if err != nil {
				fmt.Println(err)
				break
			}
			fmt.Println(t)
		}
		c.Restore(snap)

	case "tag":
		def, ok := rt.Checker().Tag(strings.TrimPrefix(strings.TrimSpace(arg), ":"))
		if !ok {
			fmt.Printf("%v is not the tag of a type\n", arg)
			break
		}
		fmt.Printf("%v = %v\n", def.Name, def.Body)

	case "read", "r":
		data, err := parser.ReadData(strings.NewReader(arg))
		if err != nil {
			fmt.Println(err)
			break
		}
		for _, d := range data {
			fmt.Printf("%v\t%T\n", d, d)
		}

	default:
		fmt.Printf("unknown command %q, try ,help\n", name)
	}
	return false
}
