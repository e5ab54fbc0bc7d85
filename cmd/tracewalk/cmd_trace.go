package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracewalk-network/tracewalk/pkg/cli"
	"github.com/tracewalk-network/tracewalk/pkg/driver"
	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/trace"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

var (
	traceFrom        string
	traceTo          string
	traceStartDevice string
	traceStartSite   string
	traceContext     string
	traceMaxHops     int
	traceHopTimeout  time.Duration
	traceCacheURL    string
	traceCacheTTL    time.Duration
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Trace the forwarding path between two IPs",
	Long: `Trace walks the routing tables from the device owning the source IP
toward the destination, one login per hop.

When the source cannot be resolved to a single device (needs_input) or a
mid-path next hop is ambiguous (ambiguous_hop), the candidate devices are
listed; re-run with --start-device to continue from your pick.

Examples:
  tracewalk trace --from 10.10.5.100 --to 192.168.100.50
  tracewalk trace --from 10.10.5.100 --to 192.168.100.50 --context prod-vrf
  tracewalk trace --from 10.10.5.100 --to 192.168.100.50 --start-device spine-01 --start-site dc-east`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, _, err := loadInventory()
		if err != nil {
			return err
		}
		resolver, err := buildResolver()
		if err != nil {
			return err
		}

		opts := trace.Options{
			MaxHops:    traceMaxHops,
			HopTimeout: traceHopTimeout,
		}
		if traceCacheURL != "" {
			cache := trace.NewRedisCache(traceCacheURL, traceCacheTTL)
			defer cache.Close()
			if err := cache.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("trace cache at %s: %w", traceCacheURL, err)
			}
			opts.Cache = cache
		}

		tracer := trace.New(inv, resolver, driver.NewRegistry(), opts)
		path := tracer.TracePath(context.Background(), trace.Request{
			SourceIP:      traceFrom,
			DestinationIP: traceTo,
			StartDevice:   traceStartDevice,
			StartSite:     traceStartSite,
			StartContext:  traceContext,
		})

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(path)
		}
		printPath(path)
		return nil
	},
}

func init() {
	traceCmd.Flags().StringVar(&traceFrom, "from", "", "Source IP address")
	traceCmd.Flags().StringVar(&traceTo, "to", "", "Destination IP address")
	traceCmd.Flags().StringVar(&traceStartDevice, "start-device", "",
		"Start from this device hostname instead of resolving the source IP")
	traceCmd.Flags().StringVar(&traceStartSite, "start-site", "",
		"Site qualifier for --start-device when the hostname exists at several sites")
	traceCmd.Flags().StringVar(&traceContext, "context", "",
		"Logical context (VRF / virtual router) to start in")
	traceCmd.Flags().IntVar(&traceMaxHops, "max-hops", trace.DefaultMaxHops, "Hop limit")
	traceCmd.Flags().DurationVar(&traceHopTimeout, "hop-timeout", trace.DefaultHopTimeout,
		"Per-hop connect and query timeout")
	traceCmd.Flags().StringVar(&traceCacheURL, "cache-url", "",
		"Redis address for the trace-result cache (empty disables caching)")
	traceCmd.Flags().DurationVar(&traceCacheTTL, "cache-ttl", 5*time.Minute,
		"TTL for cached trace results")
	traceCmd.MarkFlagRequired("from")
	traceCmd.MarkFlagRequired("to")
}

func printPath(path *model.TracePath) {
	fmt.Printf("%s -> %s\n\n", cli.Bold(path.SourceIP), cli.Bold(path.DestinationIP))

	table := cli.NewTable("#", "DEVICE", "SITE", "CONTEXT", "PROTO", "NEXT-HOP", "EGRESS", "LATENCY", "NOTES")
	for _, hop := range path.Hops {
		proto, nextHop := "-", "-"
		if hop.Route != nil {
			proto = string(hop.Route.Protocol)
			if hop.Route.NextHop != "" {
				nextHop = hop.Route.NextHop
			}
		}
		egress := util.ShortenInterfaceName(hop.EgressInterface)
		if egress == "" {
			egress = "-"
		}
		site := hop.Device.Site
		if site == "" {
			site = "-"
		}
		table.Row(
			fmt.Sprintf("%d", hop.Sequence),
			hop.Device.Hostname,
			site,
			hop.Context,
			proto,
			nextHop,
			egress,
			hop.Latency.Round(time.Millisecond).String(),
			hop.Notes,
		)
	}
	table.Flush()

	fmt.Printf("\nStatus: %s  (%d hops, %s)\n",
		cli.StatusColor(string(path.Status)), len(path.Hops), path.Elapsed.Round(time.Millisecond))
	if path.ErrorMessage != "" {
		fmt.Println(cli.Dim(path.ErrorMessage))
	}
	if len(path.Candidates) > 0 {
		fmt.Println("\nCandidate devices (re-run with --start-device):")
		ct := cli.NewTable("HOSTNAME", "SITE", "MGMT-IP", "VENDOR")
		for _, c := range path.Candidates {
			site := c.Site
			if site == "" {
				site = "-"
			}
			ct.Row(c.Hostname, site, c.ManagementIP, string(c.Vendor))
		}
		ct.Flush()
	}
}
