// The main package for the savetube executable.
package main

import (
	"github.com/savetube/savetube/cmd"
)

func main() {
	cmd.Execute()
}
