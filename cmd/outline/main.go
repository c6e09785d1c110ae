package main

import "github.com/mvp-joe/project-outline/internal/cli"

func main() {
	cli.Execute()
}
