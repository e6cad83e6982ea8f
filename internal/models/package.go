package models

// Default values for optional header fields
const (
	DefaultArch  = "noarch"
	DefaultGroup = "no group"
)

// Candidate is a repository file name that matched a search term
type Candidate struct {
	// Position in the candidate list, starting at 0
	Index int
	// Raw file name as listed by the mirror
	File string
	// Display name with the arch suffix and release tag stripped
	Display string
}

// Metadata holds the fields read from a package archive header
type Metadata struct {
	Name        string
	Version     string
	Release     string
	Arch        string
	Group       string
	Summary     string
	Description string

	// Installed size and payload size, in bytes
	Size        int64
	ArchiveSize int64

	// Type-specific metadata
	PayloadCompressor string
	Requires          []string
}
