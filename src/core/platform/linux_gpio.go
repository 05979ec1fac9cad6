//go:build linux

package platform

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// LinuxGpio drives a single GPIO line through the Linux GPIO character
// device (/dev/gpiochipN), requesting it as an output line on first use and
// reusing the line handle for subsequent writes.
type LinuxGpio struct {
	chipPath string

	mu     sync.Mutex
	lineFD map[uint8]int
}

// NewLinuxGpio returns a Gpio backed by the GPIO chip at chipPath
// (typically "/dev/gpiochip0").
func NewLinuxGpio(chipPath string) *LinuxGpio {
	return &LinuxGpio{chipPath: chipPath, lineFD: make(map[uint8]int)}
}

// WriteLine implements Gpio by requesting (and caching) an output handle
// for pin, then setting its value.
func (g *LinuxGpio) WriteLine(pin uint8, state uint8) error {
	if state != 0 && state != 1 {
		return fmt.Errorf("gpio: state %d out of domain {0,1}", state)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fd, ok := g.lineFD[pin]
	if !ok {
		var err error
		fd, err = g.requestLine(pin)
		if err != nil {
			return fmt.Errorf("gpio: request line %d: %w", pin, err)
		}
		g.lineFD[pin] = fd
	}

	values := unix.GPIOHandleData{}
	values.Values[0] = state
	return unix.IoctlSetGPIOHandleData(fd, &values)
}

func (g *LinuxGpio) requestLine(pin uint8) (int, error) {
	chip, err := os.OpenFile(g.chipPath, os.O_RDWR, 0)
	if err != nil {
		return -1, err
	}
	defer chip.Close()

	req := unix.GPIOHandleRequest{
		Lines: 1,
		Flags: unix.GPIOHANDLE_REQUEST_OUTPUT,
	}
	req.LineOffsets[0] = uint32(pin)

	if err := unix.IoctlGetLineHandle(int(chip.Fd()), &req); err != nil {
		return -1, err
	}
	return int(req.Fd), nil
}
