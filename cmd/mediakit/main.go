// Command mediakit runs the multi-tenant media asset service: the HTTP
// upload/control API, the variant-rendering worker pool, and the retention
// reconciler.
package main

import (
	"os"

	"github.com/CodeArtisanRiz/media-blob-kit/cmd/mediakit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("%s", err)
		os.Exit(1)
	}
}
