// Command ream runs Ream programs. Without a file argument, it starts
// an interactive session.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"deedles.dev/ream"
	"github.com/davecgh/go-spew/spew"
)

type config struct {
	check    bool
	types    bool
	dump     bool
	verbose  bool
	maxDepth int
}

func main() {
	var conf config
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [flags] [file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.BoolVar(&conf.check, "check", false, "type check without running")
	flag.BoolVar(&conf.types, "types", false, "print the type of every top-level expression")
	flag.BoolVar(&conf.dump, "dump", false, "dump the syntax tree")
	flag.BoolVar(&conf.verbose, "v", false, "enable debug logging")
	flag.IntVar(&conf.maxDepth, "max-depth", ream.DefaultMaxDepth, "maximum call depth")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var err error
	switch flag.NArg() {
	case 0:
		err = repl(ctx, newRuntime(conf, nil))
	case 1:
		err = runFile(ctx, conf, flag.Arg(0))
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRuntime(conf config, opts []ream.Option) *ream.Runtime {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if conf.verbose {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return ream.New(append(
		opts,
		ream.WithLogger(log),
		ream.WithMaxDepth(conf.maxDepth),
	)...)
}

func runFile(ctx context.Context, conf config, path string) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	rt := newRuntime(conf, []ream.Option{ream.WithFS(os.DirFS(dir))})

	prog, err := rt.Load(name)
	if err != nil {
		return err
	}
	if conf.dump {
		spew.Dump(prog)
	}

	ts, err := rt.Check(prog)
	if err != nil {
		return err
	}
	if conf.types {
		for i, t := range ts {
			fmt.Printf("%v: %v\n", prog[i].Position(), t)
		}
	}
	if conf.check {
		return nil
	}

	_, err = rt.Exec(ctx, prog)
	return err
}
