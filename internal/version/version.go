// ABOUTME: Version information for steptone
// ABOUTME: Reported in the CLI banner and the monitor hello
package version

import "fmt"

const (
	// Version is the release version
	Version = "0.1.0"
	// Product is the product name reported to monitors
	Product = "steptone"
	// Manufacturer is reported alongside Product
	Manufacturer = "Resonate Protocol"
)

// String returns "steptone 0.1.0"
func String() string {
	return fmt.Sprintf("%s %s", Product, Version)
}
