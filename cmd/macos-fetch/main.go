package main

import "github.com/oshokin/macos-fetcher/cmd/macos-fetch/cmd"

func main() {
	cmd.Execute()
}
