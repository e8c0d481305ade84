package main

import "arena-service/cmd"

func main() {
	cmd.Execute()
}
