// Package fetch downloads release archives over HTTP.
//
// A Downloader performs a GET with retries and exponential backoff, writes
// the body to a temporary file next to the destination and renames it into
// place once the transfer completes. The archive filename is taken from the
// final URL after redirects, so a stable "latest" URL that redirects to a
// versioned file yields the versioned name.
//
// Progress is reported through the Progress interface. The total passed to
// Start comes from the Content-Length header and is -1 when the server does
// not send one; it is used for display only.
package fetch
