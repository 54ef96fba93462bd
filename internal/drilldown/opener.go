package drilldown

import "github.com/pkg/browser"

// Opener hands a URL to something outside the process.
type Opener interface {
	Open(url string) error
}

// BrowserOpener opens URLs in the system browser.
type BrowserOpener struct{}

// Open launches the default browser for url.
func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}
