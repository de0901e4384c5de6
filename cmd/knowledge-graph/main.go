package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ritzau/knowledge-graph/pkg/config"
	"github.com/ritzau/knowledge-graph/pkg/engine"
	"github.com/ritzau/knowledge-graph/pkg/logging"
	"github.com/ritzau/knowledge-graph/pkg/output"
	"github.com/ritzau/knowledge-graph/pkg/pubsub"
	"github.com/ritzau/knowledge-graph/pkg/source"
	"github.com/ritzau/knowledge-graph/pkg/view"
	"github.com/ritzau/knowledge-graph/pkg/watcher"
	"github.com/ritzau/knowledge-graph/pkg/web"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const (
	watchQuiet   = 300 * time.Millisecond
	watchMaxWait = 2 * time.Second
)

func main() {
	f := pflag.NewFlagSet("knowledge-graph", pflag.ExitOnError)
	config.Flags(f)
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: knowledge-graph [flags] <topic.json|toml|yaml>\n\n")
		f.PrintDefaults()
	}
	_ = f.Parse(os.Args[1:])
	if f.NArg() > 0 {
		_ = f.Set("topic", f.Arg(0))
	}

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(logging.Options{Level: cfg.LogLevel(), JSON: cfg.JSONLogs})

	if cfg.Topic == "" {
		f.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := source.NewFileSource(cfg.Topic)
	if cfg.Serve {
		err = serve(ctx, cfg, src)
	} else {
		err = report(ctx, cfg, src)
	}
	if err != nil {
		logging.Error("knowledge-graph failed", "error", err)
		os.Exit(1)
	}
}

// report prints the readiness report for the topic and exits
func report(ctx context.Context, cfg *config.Config, src *source.FileSource) error {
	ds, err := src.Load(ctx)
	if err != nil {
		return err
	}
	output.PrintReadinessReport(os.Stdout, src.Path(), engine.Compute(ds, cfg.Viewport()))
	return nil
}

// serve runs the render loop, the web server and optionally the file watcher
// until ctx is cancelled or one of them fails
func serve(ctx context.Context, cfg *config.Config, src *source.FileSource) error {
	ds, err := src.Load(ctx)
	if err != nil {
		return err
	}

	publisher := pubsub.NewGraphPublisher()
	defer publisher.Close()

	var server *web.Server
	onSelect := func(sel view.Selection) {
		logging.Info("concept selected", "id", sel.Node.ID, "state", sel.State, "via", sel.Via)
		if err := server.PublishSelection(sel); err != nil {
			logging.Warn("failed to publish selection", "error", err)
		}
	}

	clock := clockwork.NewRealClock()
	v := view.New(cfg.ViewConfig(), cfg.Viewport(), onSelect)
	diff := v.SetData(clock.Now(), ds)
	snap := v.Snapshot()

	loop := view.NewLoop(v, clock, cfg.FPS)
	server = web.NewServer(loop, publisher)
	if err := server.PublishGraph(snap, diff); err != nil {
		logging.Warn("failed to publish graph", "error", err)
	}
	logging.Info("topic loaded", "topic", snap.Topic, "concepts", snap.Summary.Total,
		"mastered", snap.Summary.Mastered, "cycles", len(snap.Cycles))

	g, ctx := errgroup.WithContext(ctx)
	if err := loop.Start(ctx); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		loop.Stop()
		// Ends open subscriptions so the server can shut down
		return publisher.Close()
	})
	g.Go(func() error {
		return server.Start(ctx, cfg.Addr())
	})
	if cfg.Watch {
		g.Go(func() error {
			return watch(ctx, src, loop, server)
		})
	}
	if cfg.Open {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
		}()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watch reloads the topic file on every debounced change. A failed reload
// keeps the current graph and is reported to subscribers.
func watch(ctx context.Context, src *source.FileSource, loop *view.Loop, server *web.Server) error {
	fw, err := watcher.NewFileWatcher(src.Path())
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", src.Path(), err)
	}
	fw.Start(ctx)

	debouncer := watcher.NewDebouncer(fw.Events(), watchQuiet, watchMaxWait)
	debouncer.Start(ctx)
	logging.Info("watching topic for changes", "path", src.Path())

	for event := range debouncer.Output() {
		analysis := watcher.AnalyzeChanges(event)
		if !analysis.NeedReload {
			if analysis.KeepCurrent {
				logging.Warn("topic file removed, keeping current graph", "path", src.Path())
			}
			continue
		}

		ds, err := src.Load(ctx)
		if err != nil {
			logging.Warn("reload failed, keeping current graph", "error", err)
			if err := server.PublishReloadError(src.Name(), err); err != nil {
				logging.Debug("failed to publish reload error", "error", err)
			}
			continue
		}

		var snap view.Snapshot
		var diff *engine.Diff
		err = loop.Do(ctx, func(v *view.View, now time.Time) error {
			diff = v.SetData(now, ds)
			snap = v.Snapshot()
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to apply reload: %w", err)
		}
		if diff == nil {
			continue
		}
		logging.Info("topic reloaded",
			"added", len(diff.AddedNodes),
			"removed", len(diff.RemovedNodes),
			"stateChanges", len(diff.StateChanges),
			"structureMoved", diff.StructureMoved)
		if err := server.PublishGraph(snap, diff); err != nil {
			logging.Warn("failed to publish graph", "error", err)
		}
	}
	return nil
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
