// Package contingency implements the contingency dispatcher: it executes one logical
// AI request against an ordered list of providers, retries each provider with a
// linear delay, falls back to the next provider when one is exhausted, and records
// every attempt in an attempt log.
//
// Providers are always tried one at a time. A dispatch yields exactly one
// DispatchResult; individual provider failures only show up in its Attempts.
package contingency
