package main

import "github.com/mesoscale/mesoscaler/internal/cmd"

func main() {
	cmd.Execute()
}
