package server

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/Aman-CERP/dorindex/internal/errors"
)

// PIDFileName is the pid file written next to the document index.
const PIDFileName = "serve.pid"

// PIDFile records the process serving a project.
type PIDFile struct {
	path string
}

// NewPIDFile creates a PIDFile at path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the pid file path.
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current pid. It fails with ErrCodeStoreLocked while
// another live process holds the file; a stale file is replaced.
func (p *PIDFile) Acquire() error {
	if pid, err := p.Read(); err == nil && pid != os.Getpid() && processExists(pid) {
		return errors.New(errors.ErrCodeStoreLocked, "another server is running", nil).
			WithDetail("pid", strconv.Itoa(pid)).
			WithSuggestion("Stop it with 'dorindex serve stop'")
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return errors.InternalError("create pid directory", err).WithDetail("path", p.path)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return errors.InternalError("write pid file", err).WithDetail("path", p.path)
	}
	return nil
}

// Read returns the recorded pid. A missing file fails with
// ErrCodeConfigNotFound.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return 0, errors.New(errors.ErrCodeConfigNotFound, "no server is running", err).
			WithDetail("path", p.path)
	}
	if err != nil {
		return 0, errors.InternalError("read pid file", err).WithDetail("path", p.path)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.InternalError("invalid pid file", err).WithDetail("path", p.path)
	}
	return pid, nil
}

// Release removes the file if it still names this process.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if err != nil || pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.InternalError("remove pid file", err).WithDetail("path", p.path)
	}
	return nil
}

// Running reports whether the recorded process is alive.
func (p *PIDFile) Running() bool {
	pid, err := p.Read()
	return err == nil && processExists(pid)
}

// Signal sends sig to the recorded process.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	pid, err := p.Read()
	if err != nil {
		return err
	}
	if !processExists(pid) {
		return errors.New(errors.ErrCodeConfigNotFound, "server process is not running", nil).
			WithDetail("pid", strconv.Itoa(pid))
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return errors.InternalError("find process", err).WithDetail("pid", strconv.Itoa(pid))
	}
	if err := proc.Signal(sig); err != nil {
		return errors.InternalError("signal process", err).WithDetail("pid", strconv.Itoa(pid))
	}
	return nil
}

// processExists probes pid with signal 0; FindProcess alone always
// succeeds on Unix.
func processExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
