package database

import "errors"

// Sentinel errors returned by repositories.
var (
	// ErrWebsiteNotFound is returned when a website row does not exist.
	ErrWebsiteNotFound = errors.New("website not found")
	// ErrJobNotFound is returned when a scrape job row does not exist.
	ErrJobNotFound = errors.New("scrape job not found")
	// ErrPageNotFound is returned when a scraped page row does not exist.
	ErrPageNotFound = errors.New("scraped page not found")
)
