package main

import "github.com/oshokin/release-installer/cmd/release-installer/cmd"

func main() {
	cmd.Execute()
}
