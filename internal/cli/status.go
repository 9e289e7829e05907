// status.go implements the "parley status" command probing the service.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/console"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the agent service and show its capabilities",
	Long: `Run a liveness probe against the configured agent service and, when
reachable, print the capability summary (tool count and backend
connectivity).`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := newConsole()
	if err != nil {
		return err
	}
	ctx := context.Background()

	state := c.Probe(ctx)
	if !state.Connected {
		return fmt.Errorf("agent service at %s is unreachable; %s", state.Endpoint, console.RemediationHint)
	}

	fmt.Printf("Connected to %s\n", state.Endpoint)
	if state.Authenticated {
		fmt.Println("Auth: bearer token")
	} else {
		fmt.Println("Auth: public access")
	}

	sum, err := c.Capabilities(ctx, true)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Capability status: %s\n", sum.Status)
	if sum.Error != "" {
		fmt.Printf("  error: %s\n", sum.Error)
	}
	fmt.Printf("  Tools available:   %d\n", sum.ToolCount)
	fmt.Printf("  Reasoning backend: %s\n", yesNo(sum.ReasoningConnected))
	fmt.Printf("  Tool server:       %s\n", yesNo(sum.ToolServerConnected))

	return nil
}

func yesNo(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
