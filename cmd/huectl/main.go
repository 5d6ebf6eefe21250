package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ngerakines/huectl/cmd/huectl/internal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := internal.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
