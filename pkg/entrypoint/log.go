package entrypoint

import (
	"go.firedancer.io/nostd/pkg/cpi"
	"go.firedancer.io/nostd/pkg/sbpf"
	"k8s.io/klog/v2"
)

// Logger receives diagnostic messages from the entry points and programs.
type Logger interface {
	Log(msg string)
}

type klogLogger struct{}

func (klogLogger) Log(msg string) {
	klog.Info("Program log: " + msg)
}

var logger Logger = klogLogger{}

// SetLogger replaces the logger used by the entry points. A nil logger
// restores the klog default.
func SetLogger(l Logger) {
	if l == nil {
		l = klogLogger{}
	}
	logger = l
}

// Log writes msg to the current logger.
func Log(msg string) {
	logger.Log(msg)
}

// SyscallLogger hands messages to the host through the sol_log_ syscall,
// staging them in Frame.
type SyscallLogger struct {
	VM      sbpf.VM
	Frame   *cpi.Frame
	Syscall sbpf.Syscall
}

func (l *SyscallLogger) Log(msg string) {
	mark := l.Frame.Mark()
	defer l.Frame.Reset(mark)

	addr, err := l.Frame.PutBytes([]byte(msg))
	if err != nil {
		klog.Errorf("dropping log message: %s", err)
		return
	}
	if _, err = l.Syscall.Invoke(l.VM, addr, uint64(len(msg)), 0, 0, 0); err != nil {
		klog.Errorf("sol_log_ failed: %s", err)
	}
}
