// Package redact scrubs secrets from finding text before it is rendered or
// posted anywhere.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens and provider-specific tokens (Anthropic, OpenAI, GitHub, Slack).
// The same heuristics back the built-in security.hardcoded-secret rule
// through ContainsSecret.
//
// Path-based redaction is also supported: findings for files whose paths
// match configured glob patterns have all of their summary lines replaced
// with [REDACTED].
package redact
