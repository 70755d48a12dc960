package main

import "github.com/benoctopus/titan/cmd"

func main() {
	cmd.Execute()
}
