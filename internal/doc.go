// Package internal contains the core implementation packages for iconward.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - standard: embedded built-in icon set and its loader
//   - sanitize: allowlist filter, tree serializer and normalization guard
//   - reference: uploads location and external reference validation
//   - scanner: custom icon directory scan gated by a fingerprint index
//   - rejection: deduplicated rejection records and localized messages
//   - store: memory, file and sqlite key-value backends with TTL
//   - catalog: memoized merge of built-in and custom icons
//   - config: Viper configuration with validation
//   - watcher: debounced fsnotify monitoring of the custom icon directory
//   - server: HTTP icons, manifest, gallery, websocket and metrics
//   - services: container wiring plus the serve, watch and validate workflows
//
// # Data Flow
//
// A catalog build loads the built-in set, then asks the scanner for the
// custom set. The scanner compares the directory fingerprint against the
// persisted index and either replays the cached payload or runs every file
// through the sanitizer and reference validator. Rejections land in the
// catalog's tracker; accepted icons are merged under the key prefix.
//
// A catalog never changes after its first build. Watch and serve construct
// a fresh catalog per change batch and swap it in.
package internal
