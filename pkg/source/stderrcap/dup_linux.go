//go:build linux

package stderrcap

import "golang.org/x/sys/unix"

// dup2 duplicates oldfd onto newfd. Linux uses dup3, which is available on
// every architecture (arm64 has no dup2 syscall).
func dup2(oldfd, newfd int) error {
	return unix.Dup3(oldfd, newfd, 0)
}
