// search.go implements the "parley search" command for templated searches.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/console"
)

var searchMax int

var searchCmd = &cobra.Command{
	Use:   "search <term...>",
	Short: "Search the transcript database",
	Long: `Run the templated transcript search. The reported result count is a
presence heuristic (1 when the agent returned any prose, 0 otherwise),
not an exact match count: the agent answers in prose, not records.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")

	c, err := newConsole()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if state := c.Probe(ctx); !state.Connected {
		return fmt.Errorf("agent service at %s is unreachable; %s", state.Endpoint, console.RemediationHint)
	}

	res, err := c.Search(ctx, term, searchMax)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("search failed: %s", res.Error)
	}

	fmt.Printf("Found %d result(s)\n\n", res.TotalFound)
	if res.ResponseText != "" {
		fmt.Println(res.ResponseText)
	}
	return nil
}

func init() {
	searchCmd.Flags().IntVar(&searchMax, "max", 5, "Maximum number of results to ask for")
}
