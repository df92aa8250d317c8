// Package stacjownik queries the community Stacjownik service for driver
// statistics and flags drivers with little recorded distance.
//
// Lookups go through Warner, which caches every answer for the session,
// failures included. An unknown distance counts as inexperienced, matching
// how a brand-new account shows up. Each driver is warned about at most once.
package stacjownik
