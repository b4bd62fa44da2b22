package main

import "apigw-resource/pkg/cli"

func main() {
	cli.Main()
}
