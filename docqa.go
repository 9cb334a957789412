// Package docqa ingests documentation websites and answers questions about
// them. It crawls a bounded set of same-domain pages, chunks and embeds their
// text into a per-document index, and retrieves the passages most relevant
// to a question, with long-running work tracked through an in-memory job
// queue.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., sqlite/, goquery/, crawl/).
package docqa
