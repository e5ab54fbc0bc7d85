package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/tracewalk-network/tracewalk/pkg/credentials"
	"github.com/tracewalk-network/tracewalk/pkg/inventory"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// loadInventory reads the inventory file, applying site enrichment when an
// export is configured. Duplicate warnings are logged, not fatal.
func loadInventory() (*inventory.Inventory, []string, error) {
	var enrich inventory.SiteSource
	if enrichmentPath != "" {
		src, err := inventory.LoadSiteSource(enrichmentPath)
		if err != nil {
			return nil, nil, err
		}
		enrich = src
	}

	inv, warnings, err := inventory.LoadFile(inventoryPath, enrich)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		util.Warnf("inventory: %s", w)
	}
	return inv, warnings, nil
}

// buildResolver assembles the credential resolver: environment first, then
// the credentials file. When no default set exists and stdin is a terminal,
// the user is prompted once for a username and password.
func buildResolver() (*credentials.Resolver, error) {
	resolver := credentials.FromEnv()
	if credentialsPath != "" {
		if err := resolver.LoadFile(credentialsPath); err != nil {
			return nil, err
		}
	}
	if resolver.HasDefault() {
		return resolver, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return nil, fmt.Errorf("no default credentials: set %s/%s or pass --credentials",
			credentials.EnvUsername, credentials.EnvPassword)
	}

	fmt.Fprint(os.Stderr, "Device username: ")
	var user string
	if _, err := fmt.Scanln(&user); err != nil {
		return nil, fmt.Errorf("reading username: %w", err)
	}
	fmt.Fprint(os.Stderr, "Device password: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	resolver.SetDefault(credentials.Credentials{Username: user, Password: string(pass)})
	return resolver, nil
}
