// Package gateway provides the history sources the analysis reads from:
// a local git working tree, a remote GitHub repository, and a blame cache
// layered over either of them.
package gateway

import "context"

// Fetcher defines the behavior of a history source. Every method returns the
// raw line-oriented text of one query, in the formats below, so that parsing
// stays independent of where the history comes from.
//
//	FetchTrackedFiles      one path per line, files tracked at HEAD
//	FetchTextFiles         one path per line, files classified as text at HEAD
//	FetchBlame             line-porcelain: "author <name>", "author-mail <<email>>", "\t<content>"
//	FetchCommitLog         "<unix-seconds>\t<name>\t<email>" per non-merge commit
//	FetchShortlog          "<count>\t<Name> <email>" per author
//	FetchTags              one tag per line
//	FetchTagAuthorCommits  one line per commit by author reachable from tag
//	FetchMergeSubjects     subject of every merge commit by author
//	FetchHeadRevision      the commit id of HEAD
//
// A repository without commits yields empty text, not an error.
type Fetcher interface {
	FetchTrackedFiles(ctx context.Context) (string, error)
	FetchTextFiles(ctx context.Context) (string, error)
	FetchBlame(ctx context.Context, path string) (string, error)
	FetchCommitLog(ctx context.Context) (string, error)
	FetchShortlog(ctx context.Context) (string, error)
	FetchTags(ctx context.Context) (string, error)
	FetchTagAuthorCommits(ctx context.Context, tag, author string) (string, error)
	FetchMergeSubjects(ctx context.Context, author string) (string, error)
	FetchHeadRevision(ctx context.Context) (string, error)
}
