package main

import "github.com/KaramelBytes/sheetsift-cli/cmd"

func main() {
	cmd.Execute()
}
