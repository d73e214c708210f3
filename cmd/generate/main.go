package main

// Generate a batch of synthetic resumes:
//   go run ./cmd/generate -n 100 --concurrency 15 --save-costs

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
