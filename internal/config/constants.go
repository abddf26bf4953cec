package config

// Defaults used when neither a flag nor an environment variable is set
const (
	// DefaultBooksPath is where a mounted e-reader keeps its books and .sdr folders
	DefaultBooksPath = "/Volumes/Kindle/livros"

	// DefaultDatabasePath is the default path for the highlights database
	DefaultDatabasePath = "./highlights.db"

	// DefaultMetadataFileName is the sidecar KOReader writes next to each EPUB
	DefaultMetadataFileName = "metadata.epub.lua"

	// DefaultSyncSchedule runs the import every morning at 07:00
	DefaultSyncSchedule = "0 7 * * *"

	DefaultExtractWorkers = 4
)
