package main

import "github.com/goplus/commons/cmd/commons/internal"

func main() {
	internal.Execute()
}
