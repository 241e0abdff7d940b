package main

import (
	"github.com/AzielCF/az-hotelbot/cmd"
)

func main() {
	cmd.Execute()
}
