// Package sidecar reads Google Photos JSON sidecars and reconciles their
// timestamps with EXIF capture dates.
//
// A sidecar's timestamp objects carry a Unix-seconds "timestamp" and a human
// "formatted" string; only the former is trusted and it is always read as
// UTC. A geo object whose latitude and longitude are both exactly zero is
// Google's "no location" marker and is reported as absent.
//
// Parse never panics on hostile input. Invalid JSON or non UTF-8 bytes yield
// an error wrapping ErrParse, and callers treat the file as date-less.
package sidecar
