package main

import "github.com/aman-churiwal/tutor-gateway/internal/cli"

func main() {
	cli.Execute()
}
