// Ccflags computes the compiler flags a code-completion engine needs for a
// C-family source file.
package main

import "github.com/albertocavalcante/ccflags/cmd/ccflags/internal/cli"

func main() {
	cli.Execute()
}
