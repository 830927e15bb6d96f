// Command bedrockgen is a command-line client for the Bedrock generators.
//
//	bedrockgen generate --query "What is Go?" --context "Go is a language." --stream
//	bedrockgen generators --json
//	bedrockgen config validate --config config.yaml
package main

import (
	"os"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	if err := newRootCmd(newCLI()).Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
