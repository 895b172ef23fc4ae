package main

import "thoreinstein.com/tug/cmd"

func main() {
	cmd.Execute()
}
