package main

import "github.com/trovedash/console/server/cmd"

func main() {
	cmd.Execute()
}
