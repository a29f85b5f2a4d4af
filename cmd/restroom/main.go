// Package main provides the restroom CLI.
package main

import "github.com/mesh-intelligence/restroom/internal/cli"

func main() {
	cli.Execute()
}
