package main

import "github.com/yanryp/servicedesk-sub004/internal/cli"

func main() {
	cli.Execute()
}
