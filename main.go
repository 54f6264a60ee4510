package main

import "github.com/KaramelBytes/agridash/cmd"

func main() {
	cmd.Execute()
}
