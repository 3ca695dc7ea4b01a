// Command kvconf reads, edits and watches key=value config files.
//
//	kvconf -f app.conf get port
//	kvconf -f app.conf set port 8081
//	kvconf -f app.conf render
//	kvconf -f app.conf dump
//	kvconf -f app.conf watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/andreyvit/kvconf"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "kvconf: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	file := flag.String("f", "config.conf", "Config file")
	slab := flag.Bool("slab", false, "Use fixed-slab storage")
	strict := flag.Bool("strict", false, "Fail on invalid lines instead of skipping them")
	maxLines := flag.Int("max-lines", kvconf.DefaultMaxLines, "Slot count in fixed-slab mode")
	slotSize := flag.Int("slot-size", kvconf.DefaultSlotSize, "Slot size in bytes in fixed-slab mode")
	memLimit := flag.Int("mem-limit", 0, "Memory limit in bytes (0 = unlimited)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: kvconf [flags] get KEY | set KEY VALUE | render | dump | watch\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ll := &slog.LevelVar{}
	if err := ll.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid -log-level %q: %w", *logLevel, err)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	opt := kvconf.Options{
		MaxLines:    *maxLines,
		SlotSize:    *slotSize,
		MemoryLimit: *memLimit,
		Logger:      logger,
		Verbose:     ll.Level() <= slog.LevelDebug,
	}
	if *slab {
		opt.Mode = kvconf.FixedSlab
	}
	if *strict {
		opt.Policy = kvconf.Strict
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: get KEY")
		}
		return cmdGet(*file, opt, args[0])
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set KEY VALUE")
		}
		return cmdSet(*file, opt, args[0], args[1])
	case "render":
		return cmdRender(*file, opt)
	case "dump":
		return cmdDump(*file, opt)
	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		defer stop()
		return cmdWatch(ctx, *file, opt)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdGet(path string, opt kvconf.Options, key string) error {
	s, err := kvconf.Load(path, opt)
	if err != nil {
		return err
	}
	defer s.Close()
	v, ok := s.Lookup(key)
	if !ok {
		return fmt.Errorf("%s: key %q not found", path, key)
	}
	fmt.Println(v)
	return nil
}

func cmdSet(path string, opt kvconf.Options, key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("key and value must be non-empty")
	}
	s, err := kvconf.Load(path, opt)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, kvconf.ErrEmptySource) {
		s, err = kvconf.New(opt)
	}
	if err != nil {
		return err
	}
	defer s.Close()
	n := s.Len()
	if _, err := s.Set(key, value); err != nil {
		return err
	}
	if err := s.Save(path); err != nil {
		return err
	}
	slog.Info("saved", "path", path, "key", key, "added", s.Len() > n)
	return nil
}

func cmdRender(path string, opt kvconf.Options) error {
	s, err := kvconf.Load(path, opt)
	if err != nil {
		return err
	}
	defer s.Close()
	_, err = s.WriteTo(os.Stdout)
	return err
}

func cmdDump(path string, opt kvconf.Options) error {
	s, err := kvconf.Load(path, opt)
	if err != nil {
		return err
	}
	defer s.Close()
	fmt.Print(s.Dump(kvconf.DumpAll))
	return nil
}

func cmdWatch(ctx context.Context, path string, opt kvconf.Options) error {
	r, err := kvconf.NewReloader(path, opt)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := r.Watch(ctx); err != nil {
		return err
	}
	r.Read(func(s *kvconf.Store) {
		slog.Info("watching", "path", path, "lines", s.Len())
	})
	<-ctx.Done()
	return ctx.Err()
}
