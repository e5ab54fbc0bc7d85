package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

const iosRouteEntryOSPF = `Routing entry for 10.9.0.0/24
  Known via "ospf 1", distance 110, metric 20, type intra area
  Last update from 10.1.1.2 on GigabitEthernet0/1, 00:12:34 ago
  Routing Descriptor Blocks:
  * 10.1.1.2, from 10.255.0.2, 00:12:34 ago, via GigabitEthernet0/1
      Route metric is 20, traffic share count is 1
`

const iosRouteEntryConnected = `Routing entry for 10.1.1.0/30
  Known via "connected", distance 0, metric 0 (connected, via interface)
  Routing Descriptor Blocks:
  * directly connected, via GigabitEthernet0/0
      Route metric is 0, traffic share count is 1
`

const iosRoutingTable = `Codes: L - local, C - connected, S - static, R - RIP, B - BGP
       O - OSPF, D - EIGRP, i - IS-IS

Gateway of last resort is 10.1.1.1 to network 0.0.0.0

S*    0.0.0.0/0 [1/0] via 10.1.1.1, GigabitEthernet0/1
C        10.1.1.0/30 is directly connected, GigabitEthernet0/1
O        10.9.0.0/24 [110/20] via 10.1.1.2, 00:12:34, GigabitEthernet0/1
B E      172.16.0.0/16 [200/0] via 10.255.0.9, Ethernet2
`

func TestCiscoParseRouteEntry(t *testing.T) {
	p := CiscoIOS{}

	entry, err := p.ParseRouteEntry(iosRouteEntryOSPF, "10.9.0.55", "global")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "10.9.0.0/24", entry.Destination)
	assert.Equal(t, model.ProtocolOSPF, entry.Protocol)
	assert.Equal(t, "10.1.1.2", entry.NextHop)
	assert.Equal(t, "GigabitEthernet0/1", entry.Interface)
	assert.Equal(t, 110, entry.AdminDistance)
	assert.Equal(t, 20, entry.Metric)
	assert.Equal(t, "global", entry.Context)
	assert.False(t, entry.IsConnected())
}

func TestCiscoParseRouteEntryConnected(t *testing.T) {
	p := CiscoIOS{}

	entry, err := p.ParseRouteEntry(iosRouteEntryConnected, "10.1.1.1", "global")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.ProtocolConnected, entry.Protocol)
	assert.Empty(t, entry.NextHop)
	assert.Equal(t, "GigabitEthernet0/0", entry.Interface)
	assert.True(t, entry.IsConnected())
}

func TestCiscoParseRouteEntryNoRoute(t *testing.T) {
	p := CiscoIOS{}

	entry, err := p.ParseRouteEntry("% Network not in table\n", "192.0.2.1", "global")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCiscoParseRouteEntryGarbage(t *testing.T) {
	p := CiscoIOS{}

	_, err := p.ParseRouteEntry("% Invalid input detected at '^' marker.\n", "10.9.0.1", "global")
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrParse))
}

func TestCiscoParseRouteEntryPure(t *testing.T) {
	p := CiscoIOS{}

	first, err := p.ParseRouteEntry(iosRouteEntryOSPF, "10.9.0.55", "global")
	require.NoError(t, err)
	second, err := p.ParseRouteEntry(iosRouteEntryOSPF, "10.9.0.55", "global")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCiscoParseRoutingTable(t *testing.T) {
	p := CiscoIOS{}

	entries, err := p.ParseRoutingTable(iosRoutingTable, "global")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, model.ProtocolStatic, entries[0].Protocol)
	assert.Equal(t, "0.0.0.0/0", entries[0].Destination)

	assert.Equal(t, model.ProtocolConnected, entries[1].Protocol)
	assert.Empty(t, entries[1].NextHop)
	assert.Equal(t, "GigabitEthernet0/1", entries[1].Interface)

	assert.Equal(t, model.ProtocolOSPF, entries[2].Protocol)
	assert.Equal(t, "10.1.1.2", entries[2].NextHop)

	// Composite codes like "B E" normalize on the leading letter.
	assert.Equal(t, model.ProtocolBGP, entries[3].Protocol)
}

func TestCiscoParseContexts(t *testing.T) {
	p := CiscoIOS{}

	raw := `  Name                             Default RD            Protocols   Interfaces
  mgmt                             <not set>             ipv4        Gi0/0
  CUST-A                           65000:100             ipv4        Gi0/1
`
	names, err := p.ParseContexts(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"mgmt", "CUST-A"}, names)
}
