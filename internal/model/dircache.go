package model

//
// Directory cache
//

// DirectoryCache is the routing information the tor transport uses to
// bootstrap circuits. All the fields are OPTIONAL: an empty field means
// tor must obtain that piece of information by itself.
//
// The client treats this structure as an opaque immutable value that it
// passes along to the [Transport] on every exchange.
type DirectoryCache struct {
	// TmpDir is the scratch directory where the transport keeps its state.
	TmpDir string

	// Nodes is the microdescriptor-flavoured consensus listing the nodes.
	Nodes string

	// Relays contains the microdescriptors of the relays in Nodes.
	Relays string
}
