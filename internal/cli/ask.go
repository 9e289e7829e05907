// ask.go implements the "parley ask" one-shot query command.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/console"
	"github.com/parley-dev/parley/internal/dispatch"
	"github.com/parley-dev/parley/internal/session"
)

var askQuick string

var askCmd = &cobra.Command{
	Use:   "ask [text...]",
	Short: "Send one query to the agent and print the answer",
	Long: `Probe the service, send a single free-form query, and print the
response with timing details. With --quick, send a named canned query
instead of free-form text (one of: ` + strings.Join(dispatch.QuickActions(), ", ") + `).`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" && askQuick == "" {
		return fmt.Errorf("nothing to ask; pass a question or --quick <action>")
	}

	c, err := newConsole()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if state := c.Probe(ctx); !state.Connected {
		return fmt.Errorf("agent service at %s is unreachable; %s", state.Endpoint, console.RemediationHint)
	}

	var turn session.Turn
	if askQuick != "" {
		turn, err = c.QuickAction(ctx, askQuick)
	} else {
		turn, err = c.Send(ctx, text)
	}
	if err != nil {
		return err
	}

	fmt.Println(turn.Content)
	fmt.Println()
	fmt.Printf("(%.2fs local", turn.ExecutionTime)
	if turn.RoundCount > 0 {
		fmt.Printf(", %d rounds, %.2fs on the service", turn.RoundCount, turn.RemoteExecutionTime)
	}
	fmt.Println(")")

	return nil
}

func init() {
	askCmd.Flags().StringVar(&askQuick, "quick", "", "Named quick action to run instead of free-form text")
}
