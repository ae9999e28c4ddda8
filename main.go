package main

import "github.com/azafe/Bandidos-backend/cmd"

func main() {
	cmd.Execute()
}
