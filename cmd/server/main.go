package main

import (
	"github.com/joho/godotenv"

	"github.com/godilite/competency-dashboard/internal/cli"
)

func main() {
	_ = godotenv.Load(".env")

	cli.Execute()
}
