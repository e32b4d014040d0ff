// Package github derives candidate skill tags from a GitHub profile.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/hirelens/hirelens/internal/domain"
)

// maxRepos bounds the profile listing to a single page of repositories.
const maxRepos = 100

// repoLister is the slice of the go-github client this package consumes.
type repoLister interface {
	ListByUser(ctx context.Context, user string, opts *gh.RepositoryListByUserOptions) ([]*gh.Repository, *gh.Response, error)
}

// SkillSource lists a user's repositories and reduces them to the set of
// distinct primary languages.
type SkillSource struct {
	repos repoLister
}

// New creates a SkillSource. An empty token yields an unauthenticated client
// subject to public API rate limits.
func New(token string) *SkillSource {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = 30 * time.Second
	}
	return &SkillSource{repos: gh.NewClient(httpClient).Repositories}
}

// Skills returns the distinct declared primary languages across up to
// maxRepos of the user's repositories, in first-seen order. Repositories
// without a declared language contribute nothing.
func (s *SkillSource) Skills(ctx context.Context, username string) ([]string, error) {
	opts := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: maxRepos},
	}

	repos, _, err := s.repos.ListByUser(ctx, username, opts)
	if err != nil {
		return nil, fmt.Errorf("list repositories for %s: %w: %w", username, err, domain.ErrProfileProvider)
	}

	seen := make(map[string]struct{}, len(repos))
	skills := make([]string, 0, len(repos))
	for _, r := range repos {
		lang := r.GetLanguage()
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		skills = append(skills, lang)
	}

	return skills, nil
}
