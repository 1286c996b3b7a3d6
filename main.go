package main

import "github.com/talentloop/lookscreen/cmd"

func main() {
	cmd.Execute()
}
