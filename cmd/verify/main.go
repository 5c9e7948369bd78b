// Command verify checks Israeli addresses and postal codes from the command
// line, using the same configuration and matching rules as the HTTP server.
//
// Usage:
//
//	verify address --city "תל אביב" --street "דיזנגוף" --house 100
//	verify zip --city "תל אביב" --street "דיזנגוף" --house 100 --zip 6433222
//	verify batch --file addresses.yaml --format pretty
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
