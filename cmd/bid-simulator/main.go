// Command bid-simulator clears sealed-bid draft auctions from CSV submissions.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
