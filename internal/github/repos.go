package github

import (
	"context"
	"fmt"
	"strings"
)

// Repository is the summarized repository shape returned by search tools.
type Repository struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Owner          string `json:"owner"`
	FullName       string `json:"full_name"`
	Stars          int    `json:"stars"`
	Description    string `json:"description,omitempty"`
	Language       string `json:"language,omitempty"`
	URL            string `json:"url"`
	HasDiscussions bool   `json:"has_discussions"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// SearchResult is the aggregated outcome of a paginated repository search.
// Incomplete is set when a later page failed after earlier pages succeeded;
// the collected results are still returned.
type SearchResult struct {
	Repositories []Repository `json:"repositories"`
	TotalCount   int          `json:"total_count"`
	Incomplete   bool         `json:"incomplete,omitempty"`
	ErrorDetail  string       `json:"error,omitempty"`
}

const searchRepositoriesQuery = `
query($queryString: String!, $pageSize: Int!, $after: String) {
  search(query: $queryString, type: REPOSITORY, first: $pageSize, after: $after) {
    repositoryCount
    pageInfo {
      endCursor
      hasNextPage
    }
    nodes {
      ... on Repository {
        id
        name
        owner { login }
        nameWithOwner
        stargazerCount
        description
        primaryLanguage { name }
        url
        hasDiscussionsEnabled
        updatedAt
      }
    }
  }
}`

// repoNode mirrors the GraphQL repository node shape.
type repoNode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	NameWithOwner  string `json:"nameWithOwner"`
	StargazerCount int    `json:"stargazerCount"`
	Description    string `json:"description"`
	PrimaryLang    struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	URL                   string `json:"url"`
	HasDiscussionsEnabled bool   `json:"hasDiscussionsEnabled"`
	UpdatedAt             string `json:"updatedAt"`
}

func (n repoNode) toRepository() Repository {
	return Repository{
		ID:             n.ID,
		Name:           n.Name,
		Owner:          n.Owner.Login,
		FullName:       n.NameWithOwner,
		Stars:          n.StargazerCount,
		Description:    n.Description,
		Language:       n.PrimaryLang.Name,
		URL:            n.URL,
		HasDiscussions: n.HasDiscussionsEnabled,
		UpdatedAt:      n.UpdatedAt,
	}
}

type searchPage struct {
	Search struct {
		RepositoryCount int `json:"repositoryCount"`
		PageInfo        struct {
			EndCursor   string `json:"endCursor"`
			HasNextPage bool   `json:"hasNextPage"`
		} `json:"pageInfo"`
		Nodes []repoNode `json:"nodes"`
	} `json:"search"`
}

// SearchRepositories walks the search connection page by page until limit
// results are collected or the cursor is exhausted. A page failure after at
// least one successful page yields a partial result rather than an error.
func (c *Client) SearchRepositories(ctx context.Context, queryString string, limit int) (*SearchResult, error) {
	result := &SearchResult{Repositories: []Repository{}}
	cursor := ""

	for len(result.Repositories) < limit {
		pageSize := c.pageSize
		if remaining := limit - len(result.Repositories); remaining < pageSize {
			pageSize = remaining
		}

		variables := map[string]any{
			"queryString": queryString,
			"pageSize":    pageSize,
		}
		if cursor != "" {
			variables["after"] = cursor
		}

		var page searchPage
		if err := c.Execute(ctx, searchRepositoriesQuery, variables, &page); err != nil {
			if len(result.Repositories) == 0 {
				return nil, err
			}
			result.Incomplete = true
			result.ErrorDetail = err.Error()
			c.logger.Warn().
				Str("query", queryString).
				Int("collected", len(result.Repositories)).
				Str("error", err.Error()).
				Msg("search pagination aborted, returning partial results")
			return result, nil
		}

		result.TotalCount = page.Search.RepositoryCount
		if len(page.Search.Nodes) == 0 {
			break
		}
		for _, node := range page.Search.Nodes {
			if len(result.Repositories) >= limit {
				break
			}
			result.Repositories = append(result.Repositories, node.toRepository())
		}

		// An empty or repeating cursor means upstream has nothing further,
		// whatever hasNextPage claims.
		info := page.Search.PageInfo
		if !info.HasNextPage || info.EndCursor == "" || info.EndCursor == cursor {
			break
		}
		cursor = info.EndCursor
	}

	return result, nil
}

// buildSearchQuery assembles a GitHub search query string from filters.
func buildSearchQuery(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// SearchByFilters finds public repositories matching a free-text query,
// optionally narrowed by language and a star threshold, most recently
// updated first.
func (c *Client) SearchByFilters(ctx context.Context, query, language string, minStars, limit int) (*SearchResult, error) {
	parts := []string{query, "is:public"}
	if language != "" {
		parts = append(parts, fmt.Sprintf("language:%s", language))
	}
	if minStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%d", minStars))
	}
	parts = append(parts, "sort:updated-desc")
	return c.SearchRepositories(ctx, buildSearchQuery(parts...), limit)
}

// TopReposByActivity lists the most recently active public repositories,
// optionally filtered to a topic category.
func (c *Client) TopReposByActivity(ctx context.Context, category string, limit int) (*SearchResult, error) {
	parts := []string{"is:public"}
	if category != "" {
		parts = append(parts, fmt.Sprintf("topic:%s", category))
	}
	parts = append(parts, "sort:updated-desc")
	return c.SearchRepositories(ctx, buildSearchQuery(parts...), limit)
}

const repositoryDetailsQuery = `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    id
    name
    owner { login }
    nameWithOwner
    description
    stargazerCount
    forkCount
    url
    homepageUrl
    primaryLanguage { name }
    licenseInfo { spdxId }
    createdAt
    updatedAt
    pushedAt
    isArchived
    hasDiscussionsEnabled
    issues(states: OPEN) { totalCount }
  }
}`

// RepositoryDetails is the full detail shape for a single repository.
type RepositoryDetails struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Owner          string `json:"owner"`
	FullName       string `json:"full_name"`
	Description    string `json:"description,omitempty"`
	Stars          int    `json:"stars"`
	Forks          int    `json:"forks"`
	URL            string `json:"url"`
	Homepage       string `json:"homepage,omitempty"`
	Language       string `json:"language,omitempty"`
	License        string `json:"license,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
	PushedAt       string `json:"pushed_at,omitempty"`
	Archived       bool   `json:"archived"`
	HasDiscussions bool   `json:"has_discussions"`
	OpenIssues     int    `json:"open_issues"`
}

type repositoryDetailsPage struct {
	Repository *struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
		NameWithOwner string `json:"nameWithOwner"`
		Description   string `json:"description"`
		Stars         int    `json:"stargazerCount"`
		Forks         int    `json:"forkCount"`
		URL           string `json:"url"`
		Homepage      string `json:"homepageUrl"`
		PrimaryLang   struct {
			Name string `json:"name"`
		} `json:"primaryLanguage"`
		License struct {
			SpdxID string `json:"spdxId"`
		} `json:"licenseInfo"`
		CreatedAt             string `json:"createdAt"`
		UpdatedAt             string `json:"updatedAt"`
		PushedAt              string `json:"pushedAt"`
		IsArchived            bool   `json:"isArchived"`
		HasDiscussionsEnabled bool   `json:"hasDiscussionsEnabled"`
		Issues                struct {
			TotalCount int `json:"totalCount"`
		} `json:"issues"`
	} `json:"repository"`
}

// GetRepositoryDetails fetches metadata for a single repository. The call
// is read-only and safe to repeat.
func (c *Client) GetRepositoryDetails(ctx context.Context, owner, name string) (*RepositoryDetails, error) {
	variables := map[string]any{
		"owner": owner,
		"name":  name,
	}

	var page repositoryDetailsPage
	if err := c.Execute(ctx, repositoryDetailsQuery, variables, &page); err != nil {
		return nil, err
	}
	if page.Repository == nil {
		return nil, fmt.Errorf("repository %s/%s not found", owner, name)
	}

	r := page.Repository
	return &RepositoryDetails{
		ID:             r.ID,
		Name:           r.Name,
		Owner:          r.Owner.Login,
		FullName:       r.NameWithOwner,
		Description:    r.Description,
		Stars:          r.Stars,
		Forks:          r.Forks,
		URL:            r.URL,
		Homepage:       r.Homepage,
		Language:       r.PrimaryLang.Name,
		License:        r.License.SpdxID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		PushedAt:       r.PushedAt,
		Archived:       r.IsArchived,
		HasDiscussions: r.HasDiscussionsEnabled,
		OpenIssues:     r.Issues.TotalCount,
	}, nil
}

const repositoryIDQuery = `
query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    id
  }
}`

// GetRepositoryID resolves a repository's GraphQL node ID, needed by
// mutations such as createDiscussion.
func (c *Client) GetRepositoryID(ctx context.Context, owner, name string) (string, error) {
	variables := map[string]any{
		"owner": owner,
		"name":  name,
	}

	var page struct {
		Repository *struct {
			ID string `json:"id"`
		} `json:"repository"`
	}
	if err := c.Execute(ctx, repositoryIDQuery, variables, &page); err != nil {
		return "", err
	}
	if page.Repository == nil {
		return "", fmt.Errorf("repository %s/%s not found", owner, name)
	}
	return page.Repository.ID, nil
}
