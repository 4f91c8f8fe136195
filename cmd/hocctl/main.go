// Command hocctl manages the run history recorded by hoc.
package main

import (
	"github.com/huangsam/hoc/cmd"
	"github.com/huangsam/hoc/internal/contract"
)

func main() {
	if err := cmd.ExecuteCtl(); err != nil {
		contract.LogFatal("hocctl failed", err)
	}
}
