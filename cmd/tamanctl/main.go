package main

import "taman-digital/cmd/tamanctl/commands"

func main() {
	commands.Execute()
}
