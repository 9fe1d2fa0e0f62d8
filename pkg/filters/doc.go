// Package filters ties a schema, its filter state and the commit actions into
// one live widget.
//
// A Synchronizer starts in PhaseLoading. Mount decodes the effective URL
// (the schema's baseUrl, or the page URL) into the initial state and moves
// to PhaseReady, where every control change updates the state and, depending
// on the commit policy, either buffers or commits:
//
//   - apply mode buffers every change until Apply;
//   - otherwise non-text changes commit immediately, and text edits commit
//     on Enter, or on blur while edits are pending, when the input's trimmed
//     value is non-empty.
//
// Blur and Enter only commit; they never write to the state.
//
// A commit encodes the state into base?cls=<cls>&filters=<json>. With a
// result callback the URL is fetched and the body handed to the callback;
// without one a navigation to the URL is scheduled after a short delay.
//
// Close cancels any pending navigation and in-flight fetch.
package filters
