package main

import "github.com/SenoritaSarker/OpenMOC/cmd"

func main() {
	cmd.Execute()
}
