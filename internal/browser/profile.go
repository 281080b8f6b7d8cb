package browser

import "time"

// Profile is the fixed capability profile applied to every session.
type Profile struct {
	WindowWidth  int
	WindowHeight int
	UserAgent    string
	// Headless and NoSandbox only take effect in local-launch mode; a
	// remote backend decides its own process flags.
	Headless  bool
	NoSandbox bool
	// BlockAssets suppresses image and stylesheet loads for faster fetches.
	BlockAssets     bool
	PageLoadTimeout time.Duration
	ReadyTimeout    time.Duration
}

// DefaultProfile returns the stock fetch profile.
func DefaultProfile() Profile {
	return Profile{
		WindowWidth:     1920,
		WindowHeight:    1080,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Headless:        false,
		NoSandbox:       true,
		BlockAssets:     true,
		PageLoadTimeout: 30 * time.Second,
		ReadyTimeout:    10 * time.Second,
	}
}

// blockedPatterns returns the URL patterns suppressed when BlockAssets is set.
func (p Profile) blockedPatterns() []string {
	if !p.BlockAssets {
		return nil
	}
	return []string{
		"*.css",
		"*.png",
		"*.jpg",
		"*.jpeg",
		"*.gif",
		"*.webp",
		"*.svg",
		"*.ico",
		"*.woff",
		"*.woff2",
	}
}
