package main

import "joddit/cmd/client/cmd"

func main() {
	cmd.Execute()
}
