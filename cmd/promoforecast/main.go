package main

import "github.com/aouyang1/go-promoforecast/cmd/promoforecast/cmd"

func main() {
	cmd.Execute()
}
