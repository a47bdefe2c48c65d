package main

import (
	"os"
)

func main() {
	if err := newTripperCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
