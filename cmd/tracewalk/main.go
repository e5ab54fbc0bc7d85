// Tracewalk - routing-table path tracer
//
// Tracewalk discovers the actual Layer-3 forwarding path between two IP
// addresses by logging into successive network devices and interrogating
// their routing tables, instead of inferring the path from ICMP responses.
// It is built for environments where ICMP is filtered, where VRF or
// virtual-router segmentation hides the true next hop, or where per-hop
// detail (route source, administrative distance, egress interface, logical
// context) is required.
//
// Examples:
//
//	tracewalk trace --from 10.10.5.100 --to 192.168.100.50
//	tracewalk trace --from 10.10.5.100 --to 192.168.100.50 --start-device core-rtr-01
//	tracewalk inventory validate
//	tracewalk inventory resolve 10.255.0.1
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracewalk-network/tracewalk/pkg/util"
)

var (
	// Global option flags
	inventoryPath   string
	credentialsPath string
	enrichmentPath  string
	logLevel        string
	jsonOutput      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "tracewalk",
	Short:             "Routing-table path tracer",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Tracewalk walks the Layer-3 forwarding path between two IPs by logging
into each device along the way and asking its routing table, hop by hop.

The device registry comes from a YAML inventory file; credentials come from
the environment (TRACEWALK_SSH_USER / TRACEWALK_SSH_PASS), a .env file, or
a credentials file with named sets.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := util.SetLogLevel(logLevel); err != nil {
			return fmt.Errorf("invalid log level '%s'", logLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&inventoryPath, "inventory", "inventory.yaml",
		"Path to the device inventory YAML file")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "",
		"Path to a YAML file with named credential sets")
	rootCmd.PersistentFlags().StringVar(&enrichmentPath, "enrichment", "",
		"Path to a site-enrichment export (overrides inventory site values)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Emit JSON instead of tables")

	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(versionCmd)
}
