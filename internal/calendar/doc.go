// Package calendar classifies instants as working or non-working time
// and performs working-time arithmetic (skip to next working instant,
// measure working duration, add working duration).
//
// A calendar holds an ordered set of intervals, each static (absolute
// start/end) or recurrent (a repeating daily/weekly window), each
// marked working or non-working. Classification is total and
// deterministic: the LAST-REGISTERED interval covering an instant wins;
// if none covers it, the calendar's UnspecifiedTimeIsWorking default
// applies. The precedence rule is part of the public contract.
//
// All traversal is segment-based: between two adjacent interval
// boundaries the classification is constant, so arithmetic hops from
// boundary to boundary rather than sampling. Every walk is bounded by
// an iteration budget; exceeding it reports an error instead of
// spinning, which keeps the propagation engine terminating even for
// calendars with no working time at all.
//
// Malformed recurrence rules are rejected synchronously at interval
// registration with a *ConfigurationError. They are never deferred to
// classification time and never silently treated as "always working".
package calendar
