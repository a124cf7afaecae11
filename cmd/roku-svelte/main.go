// Command roku-svelte compiles reactive component sources into SceneGraph
// XML and BrightScript.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
