package main

import "github.com/crossforge-build/crossforge/cmd"

func main() {
	cmd.Execute()
}
