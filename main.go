package main

import "github.com/victorsmirnov/db-restore/cmd"

func main() {
	cmd.Execute()
}
