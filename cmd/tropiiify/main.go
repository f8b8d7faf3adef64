// Command tropiiify exports Tropy items as a static IIIF presentation and
// previews the result.
package main

// Set via ldflags at build time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	Execute()
}
