package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"bookshelf/internal/booklist"
	"bookshelf/internal/config"
	"bookshelf/internal/logger"
	"bookshelf/internal/platform/booksapi"
	"bookshelf/internal/view"

	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if err := logger.Setup(cfg.LogLevel); err != nil {
		logrus.Fatalf("config: log level: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	client, err := booksapi.NewClient(cfg.APIURL, booksapi.WithRateLimit(cfg.RPS))
	if err != nil {
		logrus.Fatalf("books api: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	term := newTerminal(os.Stdout, liner.TerminalSupported())
	sh := &shell{term: term, prompt: line, out: os.Stdout}
	sh.ctrl = booklist.New(client, term, sh,
		booklist.WithDismissDelay(cfg.NotifyTTL),
		booklist.WithLogger(logrus.WithField("component", "booklist")),
	)

	var code int
	if len(os.Args) > 1 {
		code = runOnce(ctx, sh, strings.Join(os.Args[1:], " "))
	} else {
		runInteractive(ctx, sh, line, cfg.HistoryFile)
	}

	sh.ctrl.Close()
	line.Close()
	stop()
	os.Exit(code)
}

// newTerminal enables colours and the spinner only on an interactive
// terminal, so piped output stays plain.
func newTerminal(out io.Writer, tty bool) *view.Terminal {
	return view.NewTerminal(out, view.WithColor(tty), view.WithSpinner(tty))
}

// runOnce executes a single command after the initial load.
func runOnce(ctx context.Context, sh *shell, input string) int {
	cmd, _, _ := strings.Cut(strings.TrimSpace(input), " ")
	switch strings.ToLower(cmd) {
	case "list", "ls", "reload":
	default:
		if err := sh.ctrl.Start(ctx); err != nil {
			return 1
		}
	}

	if _, err := sh.exec(ctx, input); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runInteractive(ctx context.Context, sh *shell, line *liner.State, historyFile string) {
	loadHistory(line, historyFile)
	defer saveHistory(line, historyFile)

	fmt.Fprintln(sh.out, "Bookshelf. Type help for commands.")
	_ = sh.ctrl.Start(ctx)

	for ctx.Err() == nil {
		input, err := line.Prompt("bookshelf> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logrus.WithError(err).Error("read input")
			}
			return
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		quit, err := sh.exec(ctx, input)
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(sh.out, uerr)
		}
		if quit {
			return
		}
	}
}

func loadHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		logrus.WithError(err).Warn("read history")
	}
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logrus.WithError(err).Warn("write history")
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logrus.WithError(err).Warn("write history")
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		logrus.WithError(err).Warn("write history")
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logrus.Infof("metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("metrics server stopped")
	}
}
