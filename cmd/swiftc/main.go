// Command swiftc compiles IFJ23 source code (a statically-typed subset of
// Swift) into IFJcode23 assembly for the target interpreter.
package main

import (
	"github.com/tskoda/go-swiftc/cmd/swiftc/cmd"
)

func main() {
	cmd.Execute()
}
