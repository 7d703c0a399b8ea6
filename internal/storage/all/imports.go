// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: importing it (typically as a blank
// import from the wiring layer) runs each backend's init, which registers its
// factory with the storage package. A binary that needs only a subset of
// backends can import those packages directly instead.
package all

import (
	_ "datapipeline/internal/storage/mysql"
	_ "datapipeline/internal/storage/postgres"
	_ "datapipeline/internal/storage/sqlite"
)
