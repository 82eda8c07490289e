package main

import "github.com/mj1618/docbind/cmd"

func main() {
	cmd.Execute()
}
