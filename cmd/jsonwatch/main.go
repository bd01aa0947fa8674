// jsonwatch tracks changes in JSON data from a command, a URL or a file.
package main

import (
	"os"

	"github.com/Gitoffthelawn/jsonwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
