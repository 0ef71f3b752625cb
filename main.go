package main

import "github.com/encodeous/linkstate/cmd"

func main() {
	cmd.Execute()
}
