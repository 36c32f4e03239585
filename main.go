package main

import "github.com/naka-gawa/git-insights/cmd"

func main() {
	cmd.Execute()
}
