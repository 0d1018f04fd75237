package main

import "github.com/deploymenttheory/go-bde/cmd"

func main() {
	cmd.Execute()
}
