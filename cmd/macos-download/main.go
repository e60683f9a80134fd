package main

import "github.com/oshokin/macos-fetcher/cmd/macos-download/cmd"

func main() {
	cmd.Execute()
}
