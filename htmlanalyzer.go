// Package htmlanalyzer serves a directory of static HTML pages over HTTP,
// renders each page in a headless browser, and records a structured
// description of its DOM tree together with a full-page screenshot.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, http/).
package htmlanalyzer
