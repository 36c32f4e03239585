package usecase

import (
	"strings"

	"github.com/naka-gawa/git-insights/internal/domain"
)

// blameState is the position of the line-porcelain parser within one
// attributed line record.
type blameState int

const (
	expectingAuthor blameState = iota
	expectingMail
	expectingContentLine
)

const (
	authorPrefix = "author "
	mailPrefix   = "author-mail "
)

// ParseBlame walks line-porcelain blame output and calls visit once per
// surviving line that has an author. A content line seen before any author
// header is dropped. A record without an author-mail header is reported with
// an empty email. Headers other than author and author-mail are ignored.
func ParseBlame(text string, visit func(domain.BlameLine)) {
	state := expectingAuthor
	var cur domain.BlameLine

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "\t"):
			if state != expectingAuthor && cur.Author != "" {
				visit(cur)
			}
			cur = domain.BlameLine{}
			state = expectingAuthor
		case strings.HasPrefix(line, mailPrefix):
			if state == expectingMail {
				mail := strings.TrimSpace(strings.TrimPrefix(line, mailPrefix))
				cur.Email = strings.TrimSuffix(strings.TrimPrefix(mail, "<"), ">")
				state = expectingContentLine
			}
		case strings.HasPrefix(line, authorPrefix):
			cur = domain.BlameLine{Author: strings.TrimSpace(strings.TrimPrefix(line, authorPrefix))}
			state = expectingMail
		}
	}
}

// CountByAuthor returns the number of surviving lines per author key.
func CountByAuthor(text string, mode domain.GroupMode) map[domain.AuthorKey]int {
	counts := make(map[domain.AuthorKey]int)
	ParseBlame(text, func(l domain.BlameLine) {
		counts[domain.KeyFor(mode, l.Author, l.Email)]++
	})
	return counts
}
