//go:build linux

// listdev enumerates /dev/input/event* nodes and prints each device's
// self-reported name, to help pick a device worth pointing evlag at.
// Nodes that cannot be opened (usually a permissions problem) are
// listed with the error instead of skipped.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unsafe"

	"golang.org/x/sys/unix"
)

// EVIOCGNAME(len) for a 256-byte buffer: _IOC(_IOC_READ, 'E', 0x06, 256)
const eviocgName256 = 2<<30 | 256<<16 | 'E'<<8 | 0x06

func deviceName(path string) (string, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return "", err
	}
	defer unix.Close(fd)

	var raw [256]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		uintptr(fd), uintptr(eviocgName256), uintptr(unsafe.Pointer(&raw[0])))
	if errno != 0 {
		return "", errno
	}
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i]), nil
		}
	}
	return string(raw[:]), nil
}

func main() {
	nodes, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(nodes) == 0 {
		fmt.Fprintln(os.Stderr, "no /dev/input/event* nodes found")
		os.Exit(1)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		name, err := deviceName(node)
		if err != nil {
			fmt.Printf("%-22s (unavailable: %v)\n", node, err)
			continue
		}
		fmt.Printf("%-22s %q\n", node, name)
	}
}
