// Package analysis is the stateless engine behind every query: descriptive
// statistics, ordinary-least-squares trend fitting, and linear forecasting
// over a single location's [domain.Series].
//
// All package-level functions are pure. They never log, never mutate their
// input, and report failures with the sentinels in package domain.
//
// [CachedAnalyzer] memoises [Describe] and [Fit] per series content for shells
// that answer the same query repeatedly.
package analysis
