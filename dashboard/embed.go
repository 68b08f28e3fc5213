// Package dashboard provides the embedded web UI assets for Fleximon.
//
// The page subscribes to /api/sse and renders the four dashboard events:
// the overall status, the critical and warning client lists and the events
// table. Assets are embedded at compile time so that Fleximon deploys as a
// single binary.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Dashboard page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
