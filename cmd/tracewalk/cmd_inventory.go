package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tracewalk-network/tracewalk/pkg/cli"
	"github.com/tracewalk-network/tracewalk/pkg/model"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory operations",
	Long: `Inspect and validate the device inventory.

Examples:
  tracewalk inventory validate
  tracewalk inventory list
  tracewalk inventory resolve 10.255.0.1`,
}

var inventoryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the inventory and report duplicate warnings",
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, warnings, err := loadInventory()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d devices\n", inventoryPath, inv.Len())
		if len(warnings) == 0 {
			fmt.Println(cli.Green("no duplicate warnings"))
			return nil
		}
		fmt.Printf("%s\n", cli.Yellow(fmt.Sprintf("%d duplicate warnings:", len(warnings))))
		for _, w := range warnings {
			fmt.Println("  - " + w)
		}
		return nil
	},
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, _, err := loadInventory()
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(inv.Devices())
		}
		table := cli.NewTable("HOSTNAME", "SITE", "MGMT-IP", "VENDOR", "TYPE", "CONTEXTS", "SUBNETS")
		for _, d := range inv.Devices() {
			site := d.Site
			if site == "" {
				site = "-"
			}
			table.Row(d.Hostname, site, d.ManagementIP, string(d.Vendor), string(d.DeviceType),
				strings.Join(d.LogicalContexts, ","), strings.Join(d.Subnets, ","))
		}
		table.Flush()
		return nil
	},
}

var inventoryResolveCmd = &cobra.Command{
	Use:   "resolve <ip>",
	Short: "Preview which device(s) an IP resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, _, err := loadInventory()
		if err != nil {
			return err
		}
		ip := args[0]
		matches := inv.FindByManagementIP(ip)
		how := "management IP"
		if len(matches) == 0 {
			matches = inv.FindBySubnet(ip)
			how = "longest-prefix subnet"
		}
		if len(matches) == 0 {
			fmt.Printf("%s: %s\n", ip, cli.Red("no matching device"))
			return nil
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(matches)
		}
		fmt.Printf("%s matches %d device(s) by %s:\n", ip, len(matches), how)
		printDevices(matches)
		return nil
	},
}

func printDevices(devices []*model.NetworkDevice) {
	table := cli.NewTable("HOSTNAME", "SITE", "MGMT-IP", "VENDOR", "SUBNETS")
	for _, d := range devices {
		site := d.Site
		if site == "" {
			site = "-"
		}
		table.Row(d.Hostname, site, d.ManagementIP, string(d.Vendor), strings.Join(d.Subnets, ","))
	}
	table.Flush()
}

func init() {
	inventoryCmd.AddCommand(inventoryValidateCmd)
	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryResolveCmd)
}
