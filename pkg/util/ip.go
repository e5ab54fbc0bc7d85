package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// IsValidIP checks if a string is a valid IPv4 or IPv6 address
func IsValidIP(ipStr string) bool {
	return net.ParseIP(ipStr) != nil
}

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// IsValidCIDR checks if a string is valid CIDR notation
func IsValidCIDR(cidr string) bool {
	_, _, err := net.ParseCIDR(cidr)
	return err == nil
}

// SubnetContains reports whether the subnet contains the IP, and the
// subnet's prefix length. Used for longest-prefix-match device resolution.
func SubnetContains(cidr, ipStr string) (bool, int, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false, 0, fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false, 0, fmt.Errorf("invalid IP address: %s", ipStr)
	}
	ones, _ := ipNet.Mask.Size()
	return ipNet.Contains(ip), ones, nil
}

// SameIP compares two IP address strings after normalization, so
// "10.0.0.1" and "010.0.0.1" or mixed-case IPv6 forms compare equal.
func SameIP(a, b string) bool {
	ipA := net.ParseIP(a)
	ipB := net.ParseIP(b)
	if ipA == nil || ipB == nil {
		return a == b
	}
	return ipA.Equal(ipB)
}

// SplitIPMask splits a CIDR notation into IP and mask length
// Returns the IP (without mask) and mask length
func SplitIPMask(cidr string) (string, int) {
	parts := strings.Split(cidr, "/")
	if len(parts) != 2 {
		return cidr, 0 // Return as-is if no mask
	}
	maskLen, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], 0
	}
	return parts[0], maskLen
}

// HostPrefix returns the host-route CIDR for an address (/32 or /128).
func HostPrefix(ipStr string) string {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ipStr
	}
	if ip.To4() != nil {
		return ipStr + "/32"
	}
	return ipStr + "/128"
}
