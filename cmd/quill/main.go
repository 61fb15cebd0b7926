package main

import (
	"github.com/quillhq/quill/cmd/quill/cmd"
)

func main() {
	cmd.Execute()
}
