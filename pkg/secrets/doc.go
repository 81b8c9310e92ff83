// Package secrets resolves ${secret:name} references in provider API keys.
//
// A reference is looked up in each configured source in order until one
// returns a value:
//
//   - FileProvider reads <dir>/<name>, a file with mode 0600 or 0400, as
//     mounted by Kubernetes or Docker secrets. With watching enabled the
//     file cache is dropped whenever the directory changes.
//   - EnvProvider reads <prefix><NAME>, the upper-cased name with dashes
//     replaced by underscores ("openai-key" -> CONDUIT_SECRET_OPENAI_KEY).
//
// Example configuration:
//
//	secrets:
//	  dir: /run/secrets
//	providers:
//	  openai:
//	    api_key: ${secret:openai-key}
//
// Resolved values are cached for a short TTL and never logged; only a
// redacted form of the secret name appears in debug logs.
package secrets
