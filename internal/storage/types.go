package storage

// Group is a top-level folder in the storage service.
type Group struct {
	Name      string `json:"name"`
	FileCount int    `json:"file_count"`
}

// File is a single stored asset inside a folder.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}
