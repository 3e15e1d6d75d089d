package main

import "github.com/janhq/autoqa-reporter/cmd"

func main() {
	cmd.Execute()
}
