// Package fetch issues the rate-limited HTTP GETs of a crawl.
//
// Every request first waits on the shared limiter, so the per-origin
// budget holds no matter how many goroutines fetch at once. Certificate
// verification is relaxed because the timetable host has served broken
// chains in the past; the crawler only reads public pages.
//
// Requests can optionally be routed through a SOCKS5 proxy.
package fetch
