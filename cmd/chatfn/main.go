// Command chatfn is the chat Lambda function. It builds the service container once at
// startup and then serves invocations with it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/basewarphq/bwchat/bwboot"
	"go.uber.org/fx"
)

// buildMode is set by the build pipeline: go build -ldflags "-X main.buildMode=debug".
var buildMode = "release"

func main() {
	mode, err := bwboot.ParseBuildMode(buildMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	c, err := bwboot.Configure(context.Background(), bwboot.Options{BuildMode: mode})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fx.New(
		fx.WithLogger(c.FxLogger),
		c.Module(),
		fx.Provide(NewHandler),
		fx.Invoke(startRuntime),
	).Run()
}

// startRuntime hands invocations to the handler once the fx app has started.
// lambda.Start never returns, so it runs in its own goroutine.
func startRuntime(lc fx.Lifecycle, h *Handler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go lambda.Start(h.Handle)
			return nil
		},
	})
}
