// Package web embeds the browser dashboard served at "/".
package web

import "embed"

// Files holds index.html and its assets at the root of the FS.
//
//go:embed index.html app.js style.css
var Files embed.FS
