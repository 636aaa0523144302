//go:build !windows

package matrix

import (
	"os"

	"golang.org/x/sys/unix"
)

func mmapRW(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func munmap(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return unix.Munmap(buf)
}

func msync(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return unix.Msync(buf, unix.MS_SYNC)
}
