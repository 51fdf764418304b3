// Command awscmdlet runs AWS Amplify UI Builder and HealthImaging operations
// from the command line, one at a time or as a resumable batch.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gurre/awscmdlet/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.New().Execute(context.Background(), os.Args[1:])
}
