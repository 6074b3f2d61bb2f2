// Command thermocancel is the CLI entry point.
package main

import (
	"github.com/turtacn/ThermoCancel/internal/interfaces/cli"
)

func main() {
	cli.Execute()
}
