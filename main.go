package main

import "rinse/cmd"

func main() {
	cmd.Execute()
}
