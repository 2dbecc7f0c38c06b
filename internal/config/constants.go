package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultOpenLibraryURL is the metadata provider used for catalog enrichment
	DefaultOpenLibraryURL = "https://openlibrary.org"
)
