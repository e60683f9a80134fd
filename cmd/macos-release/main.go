package main

import "github.com/oshokin/macos-fetcher/cmd/macos-release/cmd"

func main() {
	cmd.Execute()
}
