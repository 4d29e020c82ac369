package main

import "github.com/KaramelBytes/redlist-cli/cmd"

func main() {
	cmd.Execute()
}
