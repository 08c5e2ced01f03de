package main

import "table-reconciler/cmd"

func main() {
	cmd.Execute()
}
