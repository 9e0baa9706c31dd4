package util

// Set during the build process.
var (
	BuildHash    = "dev"
	BuildVersion = "dev"
)
