// init.go implements the "parley init" command writing a default config.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/config"
)

var initEndpoint string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .parley/config.yaml",
	Long: `Create .parley/config.yaml in the current directory with default
timeouts and cache settings. The endpoint can also be overridden at run
time with ` + config.EnvEndpoint + ` and the token with ` + config.EnvToken + `.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if _, err := config.ReadConfig(cwd); err == nil {
		return fmt.Errorf("config already exists; edit .parley/config.yaml instead")
	}

	cfg := config.DefaultConfig()
	if initEndpoint != "" {
		cfg.API.Endpoint = initEndpoint
	}
	if err := config.WriteConfig(cwd, cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote .parley/config.yaml (endpoint: %s)\n", cfg.API.Endpoint)
	return nil
}

func init() {
	initCmd.Flags().StringVar(&initEndpoint, "endpoint", "", "Agent service endpoint to record in the config")
}
