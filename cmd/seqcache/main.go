// cmd/seqcache/main.go
package main

import (
	"seqcache/internal/app"
	"seqcache/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
