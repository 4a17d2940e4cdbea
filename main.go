// Package main is the entry point for the srcverify CLI.
package main

import "srcverify.dev/pkg/srcverify/cmd"

func main() {
	cmd.Execute()
}
