// Package commit performs the outbound side of a filter commit.
//
// A commit either fetches the encoded URL and hands the body to a result
// callback (Fetcher), or navigates the page to it after a short delay
// (Scheduler). Navigations are cancelable: scheduling a new one supersedes
// the pending one, and Close cancels whatever is pending.
package commit
