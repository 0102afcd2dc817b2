package main

import (
	"github.com/mobsec-labs/secrethunter/internal/cmd"
)

func main() {
	cmd.Execute()
}
