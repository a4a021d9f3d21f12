// Package diagnostic provides structured errors, warnings, and notes
// collected while parsing legacy forms and generating artifacts.
//
// Stages never log; they return Diagnostics and let the caller decide how
// to surface them:
//   - blocking validation errors
//   - cross-artifact coverage warnings
//   - heuristics that could not classify an input
package diagnostic
