package main

import (
	"log"

	"github.com/plumeapp/plume-go/cmd"
)

func main() {
	e := cmd.RootCmd.Execute()
	if e != nil {
		log.Fatal(e)
	}
}
