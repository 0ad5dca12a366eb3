package main

import "github.com/blazeapp-lab/blazeapp-sub000/internal/cmd"

func main() {
	cmd.Execute()
}
