package detect

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/leakspider/leakspider/internal/model"
)

// Candidate is one (identifier, secret) pair found in page text.
// The secret is still plaintext at this point; Scan hashes it before
// anything leaves the package.
type Candidate struct {
	// Identifier is who the credential belongs to, typically an email
	// address.
	Identifier string

	// Secret is the plaintext secret as found on the page.
	Secret string
}

// Matcher finds credential candidates in text.
//
// Design decision: Matchers are an interface rather than a regex list so
// new leak formats (API keys, connection strings) can be added without
// touching the scan loop. Implementations must be safe for concurrent use.
type Matcher interface {
	// Name identifies the matcher in records and logs.
	Name() string

	// Match returns all candidates found in the text.
	Match(text string) []Candidate
}

// emailCredentialPattern matches the classic dump format of an email
// address immediately followed by a colon and a secret. The secret runs to
// the next whitespace and excludes colons, so "host:port:user" noise does
// not swallow adjacent tokens.
var emailCredentialPattern = regexp.MustCompile(
	`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}):([^\s:]+)`,
)

// EmailCredentialMatcher finds email:password pairs in dump listings.
type EmailCredentialMatcher struct{}

// NewEmailCredentialMatcher creates the default matcher for
// email:password leaks.
func NewEmailCredentialMatcher() *EmailCredentialMatcher {
	return &EmailCredentialMatcher{}
}

// Name returns the matcher identifier.
func (m *EmailCredentialMatcher) Name() string {
	return "email-credential"
}

// Match scans text for email:password pairs. The email part is validated
// with net/mail to cut down regex false positives, and identifiers are
// lowercased so the same account dedupes across pages.
func (m *EmailCredentialMatcher) Match(text string) []Candidate {
	matches := emailCredentialPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(matches))
	for _, match := range matches {
		email, secret := match[1], match[2]
		if _, err := mail.ParseAddress(email); err != nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Identifier: strings.ToLower(email),
			Secret:     secret,
		})
	}
	return candidates
}

// Scanner runs a set of matchers over crawled pages.
type Scanner struct {
	matchers []Matcher
}

// NewScanner creates a scanner. With no matchers given it scans with the
// default email:password matcher.
func NewScanner(matchers ...Matcher) *Scanner {
	if len(matchers) == 0 {
		matchers = []Matcher{NewEmailCredentialMatcher()}
	}
	return &Scanner{matchers: matchers}
}

// Scan runs every matcher over the page snapshot and returns credential
// records with the secret already hashed. Pages without a text snapshot
// yield nothing.
func (s *Scanner) Scan(page *model.Page) []model.Credential {
	if page.Snapshot == "" {
		return nil
	}

	service := ""
	if u, err := url.Parse(page.URL); err == nil {
		service = u.Host
	}

	var credentials []model.Credential
	seen := make(map[string]struct{})
	for _, matcher := range s.matchers {
		for _, candidate := range matcher.Match(page.Snapshot) {
			cred := model.Credential{
				Identifier: candidate.Identifier,
				SecretHash: HashSecret(candidate.Secret),
				SourceURL:  page.URL,
				Service:    service,
				Matcher:    matcher.Name(),
				FoundAt:    time.Now(),
			}
			// Dedupe identical pairs repeated on the same page.
			if _, dup := seen[cred.Key()]; dup {
				continue
			}
			seen[cred.Key()] = struct{}{}
			credentials = append(credentials, cred)
		}
	}
	return credentials
}
