// Package pocket provides a local save-anything content store. It accepts
// save requests from multiple entry points (CLI, HTTP bridge, share
// targets), classifies the content, enriches it with best-effort metadata
// scraped from the source URL, and persists it locally. Saves made while
// offline are deferred and retried when connectivity returns.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, http/).
package pocket
