package main

import "github.com/matheus3301/chatterm/internal/ctl"

func main() {
	ctl.Execute()
}
