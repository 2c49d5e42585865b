package vcx

// Config holds the runtime binding configuration.
type Config struct {
	// LibraryPath locates the native shared library to load.
	LibraryPath string `json:"library_path" validate:"required"`
}
