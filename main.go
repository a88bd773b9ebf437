package main

import (
	_ "time/tzdata"

	"github.com/aweist/league-calendar/cli"
)

func main() {
	cli.Execute()
}
