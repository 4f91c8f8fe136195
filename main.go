// Command hoc prints the hits-of-code of the Git repository in the current directory.
package main

import (
	"os"

	"github.com/huangsam/hoc/cmd"
)

func main() {
	os.Exit(cmd.RunHoc(os.Args[1:], os.Stdout))
}
