// @title SlotSwapper API
// @version 1.0
// @description API para publicar slots de calendario y negociar intercambios entre usuarios.
// @BasePath /
package main

import (
	"context"
	"fmt"
	"os"

	"slot-swapper/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
