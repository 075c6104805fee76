package main

import "eventhub/cmd/eventctl/command"

func main() {
	command.Execute()
}
