// Package main - точка входа консольного клиента carrent.
package main

import "github.com/IvanChernomyrdin/go-carrental/internal/agent/cli"

var (
	// buildVersion и buildDate подставляются через -ldflags при сборке.
	buildVersion = "dev"
	buildDate    = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
