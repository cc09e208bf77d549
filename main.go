package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	xterm "golang.org/x/term"

	"github.com/javanhut/TalonTerm/config"
	"github.com/javanhut/TalonTerm/shell"
	"github.com/javanhut/TalonTerm/terminal"
)

// TalonTerm's demo host: runs a shell behind the emulation core while
// mirroring the session onto the controlling TTY. The core tracks the
// full screen state headlessly; a GUI front end would consume the same
// snapshot API instead of stdout.
func main() {
	var (
		flagShell = pflag.String("shell", "", "shell binary to run (default: login shell)")
		flagCols  = pflag.Int("cols", 0, "terminal width (default: probe TTY, else config)")
		flagRows  = pflag.Int("rows", 0, "terminal height (default: probe TTY, else config)")
		flagDir   = pflag.String("dir", "", "working directory for the shell")
		flagDump  = pflag.Bool("dump-screen", false, "print the final screen text on exit")
	)
	pflag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("config unreadable, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}
	if *flagShell != "" {
		cfg.Shell.Path = *flagShell
	}

	cols, rows := cfg.Terminal.Cols, cfg.Terminal.Rows
	stdinFd := int(os.Stdin.Fd())
	interactive := xterm.IsTerminal(stdinFd)
	if interactive {
		if w, h, err := xterm.GetSize(stdinFd); err == nil {
			cols, rows = w, h
		}
	}
	if *flagCols > 0 {
		cols = *flagCols
	}
	if *flagRows > 0 {
		rows = *flagRows
	}

	session, err := shell.NewPtySession(cfg, uint16(cols), uint16(rows), *flagDir)
	if err != nil {
		slog.Error("starting shell", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	term := terminal.New(cols, rows)
	term.SetMaxScrollback(cfg.Terminal.Scrollback)
	term.SetOutput(func(data []byte) {
		if _, err := session.Write(data); err != nil {
			slog.Debug("pty write failed", "error", err)
		}
	})
	term.SetResizeHook(func(cols, rows int) {
		if err := session.Resize(uint16(cols), uint16(rows)); err != nil {
			slog.Debug("pty resize failed", "error", err)
		}
	})
	term.SetOnTitleChange(func(title string) {
		slog.Debug("title changed", "title", title)
	})

	done := make(chan int, 1)
	term.SetOnExit(func(code int) { done <- code })

	var restore func()
	if interactive {
		oldState, err := xterm.MakeRaw(stdinFd)
		if err != nil {
			slog.Error("raw mode", "error", err)
			os.Exit(1)
		}
		restore = func() { xterm.Restore(stdinFd, oldState) }
		defer restore()

		winch := make(chan os.Signal, 1)
		signal.Notify(winch, syscall.SIGWINCH)
		go func() {
			for range winch {
				if w, h, err := xterm.GetSize(stdinFd); err == nil {
					term.Resize(w, h)
				}
			}
		}()
	}

	// PTY output: apply to the core, mirror to the real terminal.
	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := session.Read(buf)
			if n > 0 {
				term.Write(buf[:n])
				if interactive {
					os.Stdout.Write(buf[:n])
				}
			}
			if err != nil {
				term.NotifyExit(session.ExitCode())
				return
			}
		}
	}()

	// Typed input flows through the core's input sink to the PTY.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				term.SendInput(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	code := <-done
	if restore != nil {
		restore()
	}
	if *flagDump {
		fmt.Println(term.Text())
	}
	slog.Info("session ended", "code", code, "title", term.Title(), "cwd", term.WorkingDir())
	os.Exit(code)
}
