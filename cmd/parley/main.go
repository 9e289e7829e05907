// Command parley is the session console for a remote transcript-analysis
// agent service.
package main

import "github.com/parley-dev/parley/internal/cli"

func main() {
	cli.Execute()
}
