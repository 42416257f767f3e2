package cli

import (
	"github.com/IvanChernomyrdin/go-carrental/internal/agent/api"
)

// для тестов
var (
	NewAPIClient = api.NewClient
	ReadSecret   = func(p *Prompter, label string) (string, error) {
		return p.readSecret(label)
	}
)
