// Package main provides the entry point for the leakspider CLI.
//
// Leakspider crawls Tor hidden services (.onion addresses) looking for
// leaked credentials in the email:password dump format. Discoveries are
// stored with the secret one-way hashed and reported by email alert.
//
// Usage:
//
//	leakspider crawl <onion-address>
//	leakspider history
//
// See --help for all available options.
package main

// main is the entry point for leakspider.
func main() {
	Execute()
}
