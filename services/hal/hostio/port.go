//go:build linux

// Package hostio connects the firmware core and host tools to Linux file
// descriptors: pseudo-terminals, stdio and real serial ports.
package hostio

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Port adapts a readable/writable file to hal.Port. Buffered asks the kernel
// how many bytes are queued, so it never blocks.
type Port struct {
	r, w *os.File
	one  [1]byte
}

// NewPort reads from r and writes to w. They may be the same file.
func NewPort(r, w *os.File) *Port { return &Port{r: r, w: w} }

// Stdio is the port on the process's standard input and output.
func Stdio() *Port { return NewPort(os.Stdin, os.Stdout) }

func (p *Port) Buffered() int {
	n, err := unix.IoctlGetInt(int(p.r.Fd()), unix.TIOCINQ)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (p *Port) ReadByte() (byte, error) {
	n, err := p.r.Read(p.one[:])
	if n == 1 {
		return p.one[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, err
}

func (p *Port) Write(b []byte) (int, error) { return p.w.Write(b) }

// Close closes the underlying files.
func (p *Port) Close() error {
	err := p.r.Close()
	if p.w != p.r {
		if werr := p.w.Close(); err == nil {
			err = werr
		}
	}
	return err
}
