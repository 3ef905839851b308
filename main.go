package main

import "github.com/KaramelBytes/sheetscan-cli/cmd"

func main() {
	cmd.Execute()
}
