package main

import "github.com/rustbisect/bisectd/cmd"

func main() {
	cmd.Execute()
}
