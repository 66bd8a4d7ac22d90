package main

import "github.com/MrSnakeDoc/smartbookmark/internal/cli"

func main() {
	cli.Execute()
}
