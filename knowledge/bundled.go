package knowledge

import (
	"embed"
	"io/fs"

	"github.com/c360studio/acf/graph"
)

//go:embed taxonomy
var bundled embed.FS

// Bundled returns the taxonomy shipped with the binary: nine dimensions
// with their sub-levels, six certification levels, the measure catalogue
// and hypotheses.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "taxonomy")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadBundled loads the bundled taxonomy.
func LoadBundled() ([]graph.Triple, error) {
	return NewLoader(nil).Load(Bundled())
}
