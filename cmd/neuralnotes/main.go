package main

import (
	"context"
	"os"
)

func main() {
	wiring := defaultCommandWiring(os.Stdin, os.Stdout, os.Stderr)
	root := newRootCommand(wiring)
	exitOnErr(root.Name(), root.ExecuteContext(context.Background()), wiring.stderr)
}
