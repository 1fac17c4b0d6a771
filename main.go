package main

import "github.com/user/shorts-clipper-cli/cmd"

func main() {
	cmd.Execute()
}
