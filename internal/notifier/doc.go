// Package notifier provides notification interfaces and implementations
// for newly discovered events.
//
// The notifier package supports posting event notifications to Twitter.
// It handles OAuth authentication, rate limiting, and message formatting,
// and offers a dry-run implementation for previewing output.
package notifier
