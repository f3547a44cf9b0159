package main

import (
	"embed"

	"github.com/continuous-intelligence/cIV/cmd"
)

var (
	version = "dev"
)

//go:embed templates/*.html
var templatesFiles embed.FS

//go:embed static
var staticFiles embed.FS

func main() {
	cmd.Execute(cmd.Assets{
		Version:   version,
		Templates: templatesFiles,
		Static:    staticFiles,
	})
}
