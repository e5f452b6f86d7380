package main

import "github.com/naka-gawa/repostats/cmd"

func main() {
	cmd.Execute()
}
