package main

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "ask"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}

func TestAskRequiresText(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"ask"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestAskRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "excel")
	root := newRootCmd()
	root.SetArgs([]string{"ask", "help"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected a backend validation error")
	}
}

func TestCloseOnDoneClosesChannelsAtShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	var closed atomic.Int32
	natsErr := errors.New("drain failed")
	closeOnDone(gctx, g, []func() error{
		func() error { closed.Add(1); return nil },
		func() error { closed.Add(1); return natsErr },
	})

	if n := closed.Load(); n != 0 {
		t.Fatalf("closed %d channels before shutdown", n)
	}
	cancel()
	if err := g.Wait(); !errors.Is(err, natsErr) {
		t.Fatalf("Wait()=%v; want %v", err, natsErr)
	}
	if n := closed.Load(); n != 2 {
		t.Fatalf("closed %d channels; want 2", n)
	}
}
