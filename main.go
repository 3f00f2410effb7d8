package main

import "data-mirror/cmd"

func main() {
	cmd.Execute()
}
