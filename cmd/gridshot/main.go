// Command gridshot reconstructs tables from screenshots.
//
// Usage:
//
//	gridshot extract shot1.png shot2.png -o table.csv
//	gridshot extract --dir ./screens --count 5
//	gridshot serve --config gridshot.yaml
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
