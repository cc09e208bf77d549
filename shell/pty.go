package shell

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/javanhut/TalonTerm/config"
)

// PtySession runs a login shell behind a pseudo-terminal. It is the
// external I/O collaborator of the terminal core: the session's read
// side feeds Terminal.Write and the write side receives encoded input.
type PtySession struct {
	cmd *exec.Cmd
	pty *os.File

	mu       sync.Mutex
	exitMu   sync.Mutex
	exited   bool
	exitCode int
}

// NewPtySession spawns the configured shell in a fresh PTY of the given
// size.
func NewPtySession(cfg *config.Config, cols, rows uint16, startDir string) (*PtySession, error) {
	shellPath := findShell(cfg)
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(shellPath, "-i")
	if !cfg.Shell.SourceRC {
		switch base(shellPath) {
		case "bash":
			cmd = exec.Command(shellPath, "--noprofile", "--norc", "-i")
		case "zsh":
			cmd = exec.Command(shellPath, "--no-rcs", "-i")
		case "fish":
			cmd = exec.Command(shellPath, "--no-config", "-i")
		}
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	env := os.Environ()
	env = replaceEnv(env, "TERM", cfg.Terminal.Term)
	env = replaceEnv(env, "COLORTERM", "truecolor")
	env = replaceEnv(env, "TERM_PROGRAM", "TalonTerm")
	env = replaceEnv(env, "HOME", currentUser.HomeDir)
	env = replaceEnv(env, "USER", currentUser.Username)
	env = replaceEnv(env, "SHELL", shellPath)
	env = replaceEnv(env, "COLUMNS", strconv.Itoa(int(cols)))
	env = replaceEnv(env, "LINES", strconv.Itoa(int(rows)))
	for k, v := range cfg.Shell.AdditionalEnv {
		env = replaceEnv(env, k, v)
	}
	cmd.Env = env

	cmd.Dir = currentUser.HomeDir
	if startDir != "" {
		if info, err := os.Stat(startDir); err == nil && info.IsDir() {
			cmd.Dir = startDir
		}
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, err
	}

	s := &PtySession{cmd: cmd, pty: ptmx}
	go s.wait()

	slog.Info("shell started", "path", shellPath, "cols", cols, "rows", rows)
	return s, nil
}

func (s *PtySession) wait() {
	err := s.cmd.Wait()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	s.exitMu.Lock()
	s.exited = true
	s.exitCode = code
	s.exitMu.Unlock()
	slog.Info("shell exited", "code", code)
}

func base(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func replaceEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if strings.HasPrefix(env[i], prefix) {
			env = append(env[:i], env[i+1:]...)
		}
	}
	return append(env, prefix+value)
}

// findShell picks the shell binary: config override, then the user's
// /etc/passwd entry, then common fallbacks.
func findShell(cfg *config.Config) string {
	if cfg.Shell.Path != "" {
		if _, err := os.Stat(cfg.Shell.Path); err == nil {
			return cfg.Shell.Path
		}
		slog.Warn("configured shell not found", "path", cfg.Shell.Path)
	}
	if currentUser, err := user.Current(); err == nil {
		if shell := passwdShell(currentUser.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}
	for _, shell := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func passwdShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Read reads emulator output from the PTY.
func (s *PtySession) Read(buf []byte) (int, error) {
	return s.pty.Read(buf)
}

// Write sends input bytes to the shell.
func (s *PtySession) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Write(data)
}

// Resize propagates a new terminal size to the PTY (SIGWINCH to the
// foreground process group).
func (s *PtySession) Resize(cols, rows uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pty.Setsize(s.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

// HasExited reports whether the shell process has terminated.
func (s *PtySession) HasExited() bool {
	s.exitMu.Lock()
	defer s.exitMu.Unlock()
	return s.exited
}

// ExitCode returns the shell's exit code; valid once HasExited is true.
func (s *PtySession) ExitCode() int {
	s.exitMu.Lock()
	defer s.exitMu.Unlock()
	return s.exitCode
}

// Close kills the shell and closes the PTY.
func (s *PtySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	return s.pty.Close()
}
